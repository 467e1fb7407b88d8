// Package scheduler
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
	"github.com/icct-platform/registration-backend/utils"
)

// MatchReminderScheduler periodically checks for matches starting soon and
// emails both team captains once per match
type MatchReminderScheduler struct {
	matchRepo repository.MatchRepository
	teamRepo  repository.TeamRepository
	auditRepo repository.AuditLogRepository
	notifier  ReminderSender
	logger    *log.Logger
	interval  time.Duration
	leadTime  time.Duration

	db *gorm.DB

	logFile *os.File
}

// ReminderSender is a minimal interface extracted from NotificationService for email
// This keeps the scheduler independent and easy to test
type ReminderSender interface {
	SendEmail(ctx context.Context, email, subject, htmlBody string) error
}

func NewMatchReminderScheduler(
	matchRepo repository.MatchRepository,
	teamRepo repository.TeamRepository,
	auditRepo repository.AuditLogRepository,
	notifier ReminderSender,
	db *gorm.DB,
	interval time.Duration,
	leadTime time.Duration,
) *MatchReminderScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if leadTime <= 0 {
		leadTime = 24 * time.Hour
	}

	s := &MatchReminderScheduler{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		auditRepo: auditRepo,
		notifier:  notifier,
		db:        db,
		interval:  interval,
		leadTime:  leadTime,
	}

	// Initialize scheduler-specific logger (to stdout and persistent file)
	if err := s.initSchedulerLogger(); err != nil {
		// Fallback to default stdout logger if file logger init fails
		s.logger = log.Default()
		s.logger.Printf("scheduler: failed to initialize file logger: %v", err)
	}

	return s
}

// initSchedulerLogger configures a logger that writes to both stdout and a persistent file under data/ (or /data)
func (s *MatchReminderScheduler) initSchedulerLogger() error {
	// Prefer relative data/ then fallback to /data for containerized environments
	candidates := []string{
		filepath.Join("data"),
		"/data",
	}
	var logPath string
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		logPath = filepath.Join(dir, "scheduler.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			continue
		}
		// Success
		s.logFile = f
		mw := io.MultiWriter(os.Stdout, f)
		// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
		s.logger = log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return fmt.Errorf("could not create scheduler log file in any candidate directory")
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *MatchReminderScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *MatchReminderScheduler) runOnce(ctx context.Context) {
	withinMinutes := int(s.leadTime / time.Minute)

	due, err := s.matchRepo.ListUpcoming(ctx, withinMinutes, true)
	if err != nil {
		s.logger.Printf("scheduler: list upcoming matches failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}
	s.logger.Printf("scheduler: %d matches due for reminders", len(due))

	for _, match := range due {
		m := match
		if err := s.processMatch(ctx, m); err != nil {
			s.logger.Printf("scheduler: reminder for match uuid=%s failed: %v", m.UUID, err)
		}
	}
}

func (s *MatchReminderScheduler) processMatch(ctx context.Context, m *models.Match) error {
	if m.HomeTeam == nil || m.AwayTeam == nil {
		return fmt.Errorf("match uuid=%s has unloaded teams", m.UUID)
	}

	subject := fmt.Sprintf("Match Reminder: %s vs %s", m.HomeTeam.Name, m.AwayTeam.Name)
	body := s.buildReminderBody(m)

	sent := 0
	for _, team := range []*models.Team{m.HomeTeam, m.AwayTeam} {
		if team.CaptainEmail == "" {
			s.logger.Printf("scheduler: team %s has no captain email, skipping", team.DisplayID)
			continue
		}
		emailCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := s.notifier.SendEmail(emailCtx, team.CaptainEmail, subject, body)
		cancel()
		if err != nil {
			// Leave reminder_sent unset so the next tick retries both captains
			return fmt.Errorf("send reminder to %s: %w", team.DisplayID, err)
		}
		sent++
	}

	// Mark the match and record the audit entry together so a crash between
	// the two never leaves a sent reminder unaccounted for
	if err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.matchRepo.MarkReminderSent(txCtx, m.ID); err != nil {
			return err
		}

		desc := fmt.Sprintf("Reminder sent for %s vs %s at %s (%d recipients)",
			m.HomeTeam.DisplayID, m.AwayTeam.DisplayID, m.ScheduledAt.Format(time.RFC3339), sent)
		entry := &models.AuditLog{
			TeamID:      &m.HomeTeamID,
			Action:      models.AuditActionReminderSent,
			Description: &desc,
			Success:     utils.ToPtr(true),
			CreatedAt:   utils.UTCNow(),
		}
		return s.auditRepo.Save(txCtx, entry)
	}); err != nil {
		return err
	}

	s.logger.Printf("scheduler: reminder sent for match uuid=%s recipients=%d", m.UUID, sent)
	return nil
}

func (s *MatchReminderScheduler) buildReminderBody(m *models.Match) string {
	return fmt.Sprintf(`
		<h2>Upcoming Match Reminder</h2>
		<p><strong>%s</strong> vs <strong>%s</strong></p>
		<p>Round: %s</p>
		<p>Venue: %s</p>
		<p>Scheduled: %s</p>
		<p>Please arrive at least 30 minutes before the scheduled start.</p>
	`, m.HomeTeam.Name, m.AwayTeam.Name, m.Round, m.Venue, m.ScheduledAt.Format("Monday, 2 January 2006 15:04 MST"))
}

// Close releases the scheduler log file
func (s *MatchReminderScheduler) Close() error {
	if s.logFile != nil {
		return s.logFile.Close()
	}
	return nil
}
