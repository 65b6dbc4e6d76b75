package fsrename

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

// DataDirEnv overrides the data directory (used by tests)
const DataDirEnv = "NAMESINK_DATA_DIR"

var (
	ErrNothingToRevert  = errors.New("no operations to revert")
	ErrInvalidJournalID = errors.New("invalid journal id")
)

// Operation is one recorded rename
type Operation struct {
	OldPath   string    `json:"old_path" yaml:"old_path"`
	NewPath   string    `json:"new_path" yaml:"new_path"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Success   bool      `json:"success" yaml:"success"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// JournalMetadata is the on-disk form of a journal
type JournalMetadata struct {
	JournalID  string      `json:"journal_id" yaml:"journal_id"`
	CreatedAt  time.Time   `json:"created_at" yaml:"created_at"`
	Status     string      `json:"status" yaml:"status"` // in_progress, completed, reverted
	Operations []Operation `json:"operations" yaml:"operations"`
}

// Journal records the renames of one batch so they can be undone.
// Record may be called from several workers at once.
type Journal struct {
	mu       sync.Mutex
	Metadata *JournalMetadata
	FilePath string
}

// GetJournalDir returns the journal directory, creating it if needed
func GetJournalDir() (string, error) {
	base := os.Getenv(DataDirEnv)
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(homeDir, ".local", "share", "namesink")
	}

	journalDir := filepath.Join(base, "journal")
	if err := os.MkdirAll(journalDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create journal directory: %w", err)
	}

	return journalDir, nil
}

// NewJournal starts an empty journal for a batch
func NewJournal() (*Journal, error) {
	journalDir, err := GetJournalDir()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	journalID := fmt.Sprintf("rename_%s_%09d", now.Format("20060102_150405"), now.Nanosecond())

	return &Journal{
		Metadata: &JournalMetadata{
			JournalID:  journalID,
			CreatedAt:  now,
			Status:     "in_progress",
			Operations: []Operation{},
		},
		FilePath: filepath.Join(journalDir, journalID+".json"),
	}, nil
}

// Record appends an operation
func (j *Journal) Record(oldPath, newPath string, success bool, err error) {
	op := Operation{
		OldPath:   oldPath,
		NewPath:   newPath,
		Timestamp: time.Now(),
		Success:   success,
	}
	if err != nil {
		op.Error = err.Error()
	}

	j.mu.Lock()
	j.Metadata.Operations = append(j.Metadata.Operations, op)
	j.mu.Unlock()
}

// Len returns the number of recorded operations
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.Metadata.Operations)
}

// Complete marks the journal completed and saves it
func (j *Journal) Complete() error {
	j.mu.Lock()
	j.Metadata.Status = "completed"
	j.mu.Unlock()
	return j.Save()
}

// Save writes the journal to disk
func (j *Journal) Save() error {
	j.mu.Lock()
	data, err := json.MarshalIndent(j.Metadata, "", "  ")
	j.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}

	if err := os.WriteFile(j.FilePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write journal file: %w", err)
	}

	return nil
}

// YAML renders the journal for reading on a terminal
func (j *Journal) YAML() ([]byte, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	out, err := yaml.Marshal(j.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to render journal: %w", err)
	}
	return out, nil
}

// LoadJournal reads a journal by id
func LoadJournal(journalID string) (*Journal, error) {
	journalDir, err := GetJournalDir()
	if err != nil {
		return nil, err
	}

	journalFile, err := journalPath(journalDir, journalID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(journalFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal file: %w", err)
	}

	var metadata JournalMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse journal: %w", err)
	}

	return &Journal{
		Metadata: &metadata,
		FilePath: journalFile,
	}, nil
}

// ListJournals returns all readable journals, newest first
func ListJournals() ([]*Journal, error) {
	journalDir, err := GetJournalDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(journalDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	var journals []*Journal
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		j, err := LoadJournal(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable journal")
			continue
		}
		journals = append(journals, j)
	}

	sort.Slice(journals, func(a, b int) bool {
		return journals[a].Metadata.CreatedAt.After(journals[b].Metadata.CreatedAt)
	})

	return journals, nil
}

// RevertResult summarises an undo
type RevertResult struct {
	Reverted int
	Failed   int
	Errors   []error
}

// Revert undoes the journal's successful renames in reverse order
func (j *Journal) Revert() (RevertResult, error) {
	var result RevertResult

	j.mu.Lock()
	ops := append([]Operation(nil), j.Metadata.Operations...)
	status := j.Metadata.Status
	j.mu.Unlock()

	if status == "reverted" {
		return result, fmt.Errorf("journal %s already reverted: %w", j.Metadata.JournalID, ErrNothingToRevert)
	}

	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if !op.Success {
			continue
		}

		if _, err := os.Stat(op.OldPath); err == nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("cannot restore %s: %w", op.OldPath, ErrTargetExists))
			continue
		}

		if err := os.Rename(op.NewPath, op.OldPath); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("failed to revert %s: %w", op.NewPath, err))
			continue
		}
		result.Reverted++
	}

	if result.Reverted == 0 && result.Failed == 0 {
		return result, ErrNothingToRevert
	}

	j.mu.Lock()
	j.Metadata.Status = "reverted"
	j.mu.Unlock()

	if err := j.Save(); err != nil {
		return result, err
	}

	log.Info().Str("journal", j.Metadata.JournalID).Int("reverted", result.Reverted).Int("failed", result.Failed).Msg("journal reverted")
	return result, nil
}

// DeleteJournal removes a journal file
func DeleteJournal(journalID string) error {
	journalDir, err := GetJournalDir()
	if err != nil {
		return err
	}

	journalFile, err := journalPath(journalDir, journalID)
	if err != nil {
		return err
	}

	if err := os.Remove(journalFile); err != nil {
		return fmt.Errorf("failed to delete journal file: %w", err)
	}

	return nil
}

// journalPath resolves an id inside journalDir. Ids naming anything outside it are rejected.
func journalPath(journalDir, journalID string) (string, error) {
	if journalID == "" || journalID == "." || journalID == ".." ||
		filepath.Base(journalID) != journalID || strings.ContainsAny(journalID, `/\`) {
		return "", fmt.Errorf("%q: %w", journalID, ErrInvalidJournalID)
	}
	return filepath.Join(journalDir, journalID+".json"), nil
}
