// Package progress implements the durable resume log shared by the admin
// hierarchy builder and the spatial resolver: a JSON file recording which
// countries have completed and which have failed, written atomically so a
// crash mid-write never corrupts the log a restart depends on.
package progress

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FailedCountry records a country that a phase gave up on after retrying,
// along with the error that caused the give-up.
type FailedCountry struct {
	Country string `json:"country"`
	Error   string `json:"error"`
}

// state is the on-disk JSON shape.
type state struct {
	CompletedCountries []string        `json:"completed_countries"`
	FailedCountries    []FailedCountry `json:"failed_countries"`
}

// Controller tracks per-country progress for one long-running phase (admin
// hierarchy construction or spatial resolution) and persists it to path.
// The progress file is the only source of truth on resume: a country not
// listed as completed or failed is treated as not yet attempted, and
// failed countries are skipped rather than automatically retried.
type Controller struct {
	path string

	mu    sync.Mutex
	state state
}

// Load reads an existing progress file at path, or starts fresh if none
// exists.
func Load(path string) (*Controller, error) {
	c := &Controller{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &c.state); err != nil {
		return nil, err
	}
	return c, nil
}

// IsDone reports whether country has already completed or failed in a
// prior run.
func (c *Controller) IsDone(country string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, done := range c.state.CompletedCountries {
		if done == country {
			return true
		}
	}
	for _, f := range c.state.FailedCountries {
		if f.Country == country {
			return true
		}
	}
	return false
}

// FailedCount reports how many countries are recorded as failed.
func (c *Controller) FailedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.state.FailedCountries)
}

// Remaining filters countries down to those not yet completed or failed,
// preserving input order.
func (c *Controller) Remaining(countries []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	done := make(map[string]struct{}, len(c.state.CompletedCountries)+len(c.state.FailedCountries))
	for _, d := range c.state.CompletedCountries {
		done[d] = struct{}{}
	}
	for _, f := range c.state.FailedCountries {
		done[f.Country] = struct{}{}
	}
	out := make([]string, 0, len(countries))
	for _, code := range countries {
		if _, ok := done[code]; !ok {
			out = append(out, code)
		}
	}
	return out
}

// MarkDone records country as completed and persists the progress file.
func (c *Controller) MarkDone(country string) error {
	c.mu.Lock()
	c.state.CompletedCountries = append(c.state.CompletedCountries, country)
	snapshot := c.state
	c.mu.Unlock()
	return c.persist(snapshot)
}

// MarkFailed records country as failed with err's message and persists the
// progress file. A failed country is not retried by a later call to
// Remaining within the same progress file.
func (c *Controller) MarkFailed(country string, err error) error {
	c.mu.Lock()
	c.state.FailedCountries = append(c.state.FailedCountries, FailedCountry{
		Country: country,
		Error:   err.Error(),
	})
	snapshot := c.state
	c.mu.Unlock()
	return c.persist(snapshot)
}

// persist writes s to a temp file in the same directory as c.path and
// renames it into place, so a reader never observes a partially written
// file.
func (c *Controller) persist(s state) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".progress-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, c.path)
}
