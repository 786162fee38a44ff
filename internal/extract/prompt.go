package extract

// ExtractionPrompt is the instruction block sent to the oracle for every
// document. Invoices from different shops disagree on terminology, so the
// prompt names the common event types and steers toward DUE dates, which in
// practice are the maintenance dates rather than the billing dates.
const ExtractionPrompt = `Analyze this aviation invoice and extract:
1. Date - Look for "DUE" dates or invoice dates (format: MM/DD/YY or MM/DD/YYYY)
2. Tail Number (aircraft registration like N433SP, N8184G, etc)
3. Event Type (100-HR INSPECTION, 50-HR INSPECTION, ANNUAL, REPLACEMENT, SERVICE, REPAIR, etc)
4. Component Description (main component or service)

IMPORTANT: If you see "DUE" followed by a date, use that date.

Respond with ONLY a JSON object like this:
{"date": "03/15/2024", "tail_number": "N12345", "event_type": "REPLACEMENT", "component_description": "alternator"}`
