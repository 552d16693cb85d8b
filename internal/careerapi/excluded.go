package careerapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// ExcludedMatches is the on-disk list of matches the user asked to hide from future runs.
type ExcludedMatches struct {
	Items []*ExcludedMatch
}

type ExcludedMatch struct {
	ID         string
	Title      string
	Company    string
	ExcludedAt time.Time
}

func (m *Matches) ToExcluded(now time.Time) *ExcludedMatches {
	excluded := &ExcludedMatches{}
	for _, match := range m.Items {
		excluded.Items = append(excluded.Items, &ExcludedMatch{
			ID:         match.ID,
			Title:      match.Title,
			Company:    match.Company,
			ExcludedAt: now.UTC(),
		})
	}
	return excluded
}

// GetExcludedMatchesFromFile reads the exclude file. A missing or empty file is an empty list.
func GetExcludedMatchesFromFile(path string) (*ExcludedMatches, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedMatches{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedMatches{}, nil
	}

	var excluded ExcludedMatches
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose ids are not present yet.
func (e *ExcludedMatches) Append(other *ExcludedMatches) {
	known := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		known[item.ID] = struct{}{}
	}

	for _, item := range other.Items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedMatches) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *ExcludedMatches) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// AppendExcludedToFile merges the entries into the exclude file and returns
// the merged list. A sibling lock file serializes concurrent sessions.
func AppendExcludedToFile(path string, other *ExcludedMatches) (*ExcludedMatches, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking exclude file: %w", err)
	}
	defer lock.Unlock()

	excluded, err := GetExcludedMatchesFromFile(path)
	if err != nil {
		return nil, err
	}

	excluded.Append(other)

	if err := excluded.ToFile(path); err != nil {
		return nil, err
	}
	return excluded, nil
}
