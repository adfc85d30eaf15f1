// Package session lays out the output folders of an engine run:
//
//	{dataOutputPath}/{YYYY-MM-DD}/run_N/actions.parquet
//	{dataOutputPath}/{YYYY-MM-DD}/run_N/stats.yaml
//
// A run keeps its number across midnight and continues in the new date folder.
package session

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-meanrev/internal/logger"
	"github.com/rxtech-lab/argo-meanrev/pkg/errors"
	"go.uber.org/zap"
)

const (
	ActionsFileName = "actions.parquet"
	StatsFileName   = "stats.yaml"
	dateLayout      = "2006-01-02"
)

var (
	runPattern  = regexp.MustCompile(`^run_(\d+)$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// SessionManager tracks the run folder the engine is currently writing to.
type SessionManager struct {
	dataOutputPath string
	runID          string
	runNumber      int
	sessionStart   time.Time
	currentDate    string
	currentRunPath string
	now            func() time.Time
	mu             sync.Mutex
	logger         *logger.Logger
}

// NewSessionManagerWithClock creates a SessionManager with a custom clock.
func NewSessionManagerWithClock(log *logger.Logger, now func() time.Time) *SessionManager {
	return &SessionManager{
		dataOutputPath: "",
		runID:          "",
		runNumber:      0,
		sessionStart:   time.Time{},
		currentDate:    "",
		currentRunPath: "",
		now:            now,
		mu:             sync.Mutex{},
		logger:         log,
	}
}

// Initialize picks the next run number for today and creates its folder.
func (s *SessionManager) Initialize(dataOutputPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dataOutputPath = dataOutputPath
	s.sessionStart = s.now()
	s.currentDate = s.sessionStart.Format(dateLayout)

	runs, err := ListRuns(dataOutputPath, s.currentDate)
	if err != nil {
		return err
	}

	s.runNumber = 1
	if len(runs) > 0 {
		s.runNumber = runNumber(runs[len(runs)-1]) + 1
	}

	s.runID = fmt.Sprintf("run_%d", s.runNumber)

	if err := s.createRunFolder(); err != nil {
		return err
	}

	s.logger.Info("Session initialized",
		zap.String("run_id", s.runID),
		zap.String("date", s.currentDate),
		zap.String("path", s.currentRunPath),
	)

	return nil
}

//nolint:funcorder // helper method used by Initialize and HandleDateBoundary
func (s *SessionManager) createRunFolder() error {
	s.currentRunPath = filepath.Join(s.dataOutputPath, s.currentDate, s.runID)

	if err := os.MkdirAll(s.currentRunPath, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeJournalFailed, "failed to create run folder", err)
	}

	return nil
}

// HandleDateBoundary moves the run into a new date folder when timestamp falls on a new day.
// It reports whether a new folder was created.
func (s *SessionManager) HandleDateBoundary(timestamp time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newDate := timestamp.Format(dateLayout)
	if newDate == s.currentDate {
		return false, nil
	}

	oldDate := s.currentDate
	s.currentDate = newDate

	if err := s.createRunFolder(); err != nil {
		return false, err
	}

	s.logger.Info("Date boundary crossed, created new folder",
		zap.String("old_date", oldDate),
		zap.String("new_date", newDate),
		zap.String("run_id", s.runID),
		zap.String("new_path", s.currentRunPath),
	)

	return true, nil
}

// GetCurrentRunPath returns the current run folder path.
func (s *SessionManager) GetCurrentRunPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentRunPath
}

// GetRunID returns the session run ID (e.g., "run_1").
func (s *SessionManager) GetRunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runID
}

// GetRunNumber returns the numeric run number.
func (s *SessionManager) GetRunNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runNumber
}

// GetSessionStart returns the session start time.
func (s *SessionManager) GetSessionStart() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessionStart
}

// GetCurrentDate returns the current date in YYYY-MM-DD format.
func (s *SessionManager) GetCurrentDate() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.currentDate
}

// ActionsPath returns the actions journal of the current run folder.
func (s *SessionManager) ActionsPath() string {
	return s.GetFilePath(ActionsFileName)
}

// StatsPath returns the stats file of the current run folder.
func (s *SessionManager) StatsPath() string {
	return s.GetFilePath(StatsFileName)
}

// GetFilePath returns the full path for a file in the current run folder.
func (s *SessionManager) GetFilePath(filename string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filepath.Join(s.currentRunPath, filename)
}

// ListDates returns the date folders under root, oldest first.
func ListDates(root string) ([]string, error) {
	return listDirs(root, datePattern, func(a, b string) int { return cmp.Compare(a, b) })
}

// ListRuns returns the run folders of one date, ordered by run number.
func ListRuns(root, date string) ([]string, error) {
	return listDirs(filepath.Join(root, date), runPattern, func(a, b string) int {
		return cmp.Compare(runNumber(a), runNumber(b))
	})
}

// LatestRunPath returns the highest-numbered run folder of the newest date under root.
func LatestRunPath(root string) (string, error) {
	dates, err := ListDates(root)
	if err != nil {
		return "", err
	}

	for _, date := range slices.Backward(dates) {
		runs, err := ListRuns(root, date)
		if err != nil {
			return "", err
		}

		if len(runs) > 0 {
			return filepath.Join(root, date, runs[len(runs)-1]), nil
		}
	}

	return "", errors.Newf(errors.ErrCodeJournalFailed, "no runs found under %s", root)
}

func listDirs(path string, pattern *regexp.Regexp, compare func(a, b string) int) ([]string, error) {
	entries, err := os.ReadDir(path)
	if os.IsNotExist(err) {
		return []string{}, nil
	}

	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeJournalFailed, err, "failed to read directory %s", path)
	}

	names := []string{}

	for _, entry := range entries {
		if entry.IsDir() && pattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}

	slices.SortFunc(names, compare)

	return names, nil
}

func runNumber(runID string) int {
	matches := runPattern.FindStringSubmatch(runID)
	if len(matches) != 2 {
		return 0
	}

	n, _ := strconv.Atoi(matches[1])

	return n
}
