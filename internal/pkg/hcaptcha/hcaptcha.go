package hcaptcha

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mweidenbach/TubeRank/internal/pkg/env"
)

const verifyURL = "https://hcaptcha.com/siteverify"

var httpClient = &http.Client{Timeout: 10 * time.Second}

type verifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verify checks a client-side hCaptcha token against the siteverify API.
func Verify(token string) (bool, error) {
	if token == "" {
		return false, errors.New("hcaptcha: token is empty")
	}

	secret := env.GetEnv("HCAPTCHA_SECRET", "")
	if secret == "" {
		return false, errors.New("hcaptcha: secret is not configured")
	}

	resp, err := httpClient.PostForm(verifyURL, url.Values{
		"secret":   {secret},
		"response": {token},
	})
	if err != nil {
		return false, fmt.Errorf("hcaptcha: verify request failed: %w", err)
	}
	defer resp.Body.Close()

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("hcaptcha: failed to decode response: %w", err)
	}

	if !body.Success {
		if len(body.ErrorCodes) > 0 {
			return false, fmt.Errorf("hcaptcha: validation failed: %s", strings.Join(body.ErrorCodes, ", "))
		}
		return false, errors.New("hcaptcha: validation failed")
	}
	return true, nil
}
