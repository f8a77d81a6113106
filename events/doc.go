// Package events describes what happens during an agent run so it can be
// observed from outside the process.
//
// An agent configured with a Publisher emits, for every run:
//
//   - Request: the user prompt
//   - Delim start, then one Chunk per streamed fragment, then Delim end
//     (streaming runs only)
//   - Response: the final assistant message with model, finish reason and usage
//   - Error: instead of the Response when the run fails
//
// Every event carries the RunID of the run and the SessionID of the agent
// memory it belongs to. Events travel as JSON objects tagged with a "type"
// field; ToJSON and FromJSON convert between the two:
//
//	{"type":"chunk","run_id":"...","session_id":"...","index":0,"content":"Hel","sender":"poet","timestamp":"..."}
//
// Errors produced by pkg/errs keep their kind on the wire, so a subscriber can
// still match them with errors.Is.
//
// Subscribers implement Hook and use Dispatch to route decoded events.
package events
