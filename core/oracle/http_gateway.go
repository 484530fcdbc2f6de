package oracle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Ken1t5cnethEllinguehyh4eton/elderly-monitoring/types/ids"
)

// HTTPGateway posts decryption jobs to an external oracle service.
type HTTPGateway struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPGateway(endpoint string) *HTTPGateway {
	return &HTTPGateway{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// BeginDecryption mints a fresh token and dispatches the job. The
// oracle acknowledges synchronously; cleartexts come back later through
// the callback endpoint named in the request.
func (g *HTTPGateway) BeginDecryption(handles []ids.Handle, callback string) (Token, error) {
	token := Token(uuid.New().String())
	req := DecryptionRequest{
		Token:    token,
		Handles:  handles,
		Callback: callback,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	resp, err := g.Client.Post(g.Endpoint+"/decrypt", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("oracle dispatch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("oracle rejected request: %s", resp.Status)
	}
	return token, nil
}
