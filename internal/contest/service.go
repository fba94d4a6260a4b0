package contest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	codeforcesContestURL = "https://codeforces.com/api/contest.list"
	defaultCacheTTL      = 10 * time.Minute
)

// Contest is the normalized shape the frontend renders, whatever the upstream.
type Contest struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Platform string    `json:"platform"`
	Link     string    `json:"link"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// ContestService aggregates upcoming contests from the Codeforces public API
// and caches the normalized list so page loads don't hammer the upstream.
type ContestService struct {
	BaseURL string
	TTL     time.Duration
	http    *http.Client

	mu        sync.Mutex
	cached    []Contest
	fetchedAt time.Time
}

func NewContestService() *ContestService {
	return &ContestService{
		BaseURL: codeforcesContestURL,
		TTL:     defaultCacheTTL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type cfContest struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Phase            string `json:"phase"`
	StartTimeSeconds int64  `json:"startTimeSeconds"`
	DurationSeconds  int64  `json:"durationSeconds"`
}

type cfContestResponse struct {
	Status string      `json:"status"`
	Result []cfContest `json:"result"`
}

// Upcoming returns contests that have not started yet, earliest first. On
// upstream failure a warm cache is served even if stale.
func (s *ContestService) Upcoming() ([]Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && time.Since(s.fetchedAt) < s.TTL {
		return s.cached, nil
	}

	contests, err := s.fetch()
	if err != nil {
		if s.cached != nil {
			return s.cached, nil
		}
		return nil, err
	}

	s.cached = contests
	s.fetchedAt = time.Now()
	return contests, nil
}

func (s *ContestService) fetch() ([]Contest, error) {
	resp, err := s.http.Get(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("contest fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("contest upstream returned status %d", resp.StatusCode)
	}

	var body cfContestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("contest response malformed: %w", err)
	}
	if body.Status != "OK" {
		return nil, errors.New("contest upstream rejected the request")
	}

	contests := make([]Contest, 0, len(body.Result))
	// The upstream lists newest first; BEFORE contests are the upcoming ones.
	for i := len(body.Result) - 1; i >= 0; i-- {
		c := body.Result[i]
		if c.Phase != "BEFORE" {
			continue
		}
		start := time.Unix(c.StartTimeSeconds, 0).UTC()
		contests = append(contests, Contest{
			ID:       fmt.Sprintf("cf-%d", c.ID),
			Name:     c.Name,
			Platform: "codeforces.com",
			Link:     fmt.Sprintf("https://codeforces.com/contests/%d", c.ID),
			Start:    start,
			End:      start.Add(time.Duration(c.DurationSeconds) * time.Second),
		})
	}
	return contests, nil
}
