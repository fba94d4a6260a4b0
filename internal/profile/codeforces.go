package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const codeforcesBaseURL = "https://codeforces.com/api"

// CodeforcesClient reads public user data from the Codeforces REST API.
type CodeforcesClient struct {
	BaseURL string
	http    *http.Client
}

func NewCodeforcesClient() *CodeforcesClient {
	return &CodeforcesClient{
		BaseURL: codeforcesBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type CodeforcesUser struct {
	Handle    string `json:"handle"`
	Rating    int    `json:"rating"`
	MaxRating int    `json:"maxRating"`
}

type userInfoResponse struct {
	Status  string           `json:"status"`
	Comment string           `json:"comment"`
	Result  []CodeforcesUser `json:"result"`
}

func (c *CodeforcesClient) UserInfo(handle string) (*CodeforcesUser, error) {
	resp, err := c.http.Get(c.BaseURL + "/user.info?handles=" + url.QueryEscape(handle))
	if err != nil {
		return nil, fmt.Errorf("codeforces request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("codeforces returned status %d", resp.StatusCode)
	}

	var body userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("codeforces response malformed: %w", err)
	}
	if body.Status != "OK" || len(body.Result) == 0 {
		return nil, errors.New("codeforces: " + body.Comment)
	}

	return &body.Result[0], nil
}
