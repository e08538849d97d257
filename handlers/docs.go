/*
Endpoints do not require authentication. A submission is only accepted from
submitters who know an application ID, which is checked against the roster
with the check identity endpoint first.

Errors are returned as the JSON: `{"error": "<message>"}`. Messages of 4xx
responses can be shown to users, 5xx responses always carry the message
`internal server error`.

Routes:

	POST /check-identity   {"applicationId": string}
	POST /submit           multipart form, see parsing.ParseSubmissionForm
	GET  /health
	GET  /metrics
*/
package handlers
