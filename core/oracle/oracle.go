// Package oracle is the node's contract with the external decryption
// oracle: request dispatch, the correlation token, the cleartext wire
// codec and proof verification. Decryption itself never happens here.
package oracle

import (
	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// Token correlates one decryption request with its asynchronous
// callback. Minted fresh per request, unique for its lifetime, never
// reused for another request.
type Token string

// Callback designators. The oracle delivers its answer to the node
// endpoint named here.
const (
	CallbackAnomalyResult  = "anomaly-result"
	CallbackAlertCleartext = "alert-cleartext"
)

// DecryptionRequest asks the oracle to decrypt an ordered list of
// handles and deliver the cleartexts, with proof, to Callback.
type DecryptionRequest struct {
	Token    Token        `json:"requestId"`
	Handles  []ids.Handle `json:"handles"`
	Callback string       `json:"callback"`
}

// Gateway dispatches decryption jobs. BeginDecryption mints the token,
// hands the job to the oracle and returns immediately; the answer
// arrives at an unspecified later time through the named callback.
// A dispatch error means no request was made and nothing is owed.
type Gateway interface {
	BeginDecryption(handles []ids.Handle, callback string) (Token, error)
}
