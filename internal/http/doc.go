// Package http exposes the date planner over JSON.
//
// The router serves the following endpoints:
//   - POST /plan: creates a plan. Body: {"name","description"?}. Responds 201
//     with {"plan"} and an `HX-Redirect: plan/<url_id>` header.
//   - GET /plan/{slug}: the plan with every participant and their dates.
//   - POST /plan/{slug}: toggles one date for one participant. Body:
//     {"user":"<web_id>","date":"YYYY-MM-DD"}. Responds {"date","marked"}.
//   - POST /plan/{slug}/dates: marks several dates at once. Body:
//     {"user","dates":[...]}. Responds with the participant's dates.
//   - DELETE /plan/{slug}: removes the plan with its participants. 204.
//   - POST /user/{slug}: adds a participant. Body: {"username"}. Responds 201
//     with {"user"} carrying the web id.
//
// Request/response DTOs live alongside their handlers.
package http
