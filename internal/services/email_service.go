package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/justsurfingit/talent-tracker/internal/dtos"
	"github.com/justsurfingit/talent-tracker/internal/metrics"
	"github.com/justsurfingit/talent-tracker/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Mail processing outcomes, also used as metric labels.
const (
	MailNoCandidate = "no_candidate"
	MailTerminal    = "terminal"
	MailNoChange    = "no_change"
	MailMoved       = "moved"
	MailFailed      = "failed"
)

const (
	// bootstrapQuery selects recent candidate replies on the first sync.
	bootstrapQuery = "subject:(application OR interview OR update OR offer OR rejected OR status) newer_than:7d"
	syncTimeout    = 2 * time.Minute
)

// ReplyClassifier decides what a candidate's email means for their status.
type ReplyClassifier interface {
	ClassifyReply(ctx context.Context, candidate, jobTitle, subject, body string) (*dtos.ReplyClassification, error)
}

type EmailService struct {
	DB         *gorm.DB
	Log        *zap.Logger
	Mailbox    string
	Gmail      *gmail.Service
	Classifier ReplyClassifier
	Matcher    *MatcherService
	Board      *BoardService
}

func NewEmailService(db *gorm.DB, log *zap.Logger, mailbox string, client *gmail.Service, classifier ReplyClassifier, matcher *MatcherService, board *BoardService) *EmailService {
	return &EmailService{
		DB:         db,
		Log:        log,
		Mailbox:    mailbox,
		Gmail:      client,
		Classifier: classifier,
		Matcher:    matcher,
		Board:      board,
	}
}

// StartWatcher syncs once right away, then every interval until ctx is done.
func (s *EmailService) StartWatcher(ctx context.Context, interval time.Duration) {
	if s.Gmail == nil {
		s.Log.Warn("Mail watcher disabled, no mailbox client")
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if err := s.SyncEmails(ctx); err != nil {
				s.Log.Error("Mail sync failed", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// SyncEmails processes every new message since the last bookmark. The first
// run, or a run whose bookmark has expired, looks at the last seven days.
// The bookmark only advances once every message in the batch has been
// handled; failed messages are picked up again by the next run.
func (s *EmailService) SyncEmails(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	s.Log.Info("Mail sync started", zap.String("mailbox", s.Mailbox))

	state := models.MailboxState{Mailbox: s.Mailbox}
	if err := s.DB.WithContext(ctx).Where(models.MailboxState{Mailbox: s.Mailbox}).FirstOrCreate(&state).Error; err != nil {
		return fmt.Errorf("loading mailbox state: %w", err)
	}

	var (
		batch *mailBatch
		err   error
	)
	if state.LastHistoryID == 0 {
		s.Log.Info("No mailbox bookmark, running full sync")
		batch, err = s.performFullSync(ctx)
	} else {
		batch, err = s.performIncrementalSync(ctx, state.LastHistoryID)
		if isHistoryExpiredError(err) {
			s.Log.Warn("Mailbox history expired, falling back to full sync", zap.Uint64("history_id", state.LastHistoryID))
			batch, err = s.performFullSync(ctx)
		}
	}
	if err != nil {
		return err
	}

	s.Log.Info("Mail sync fetched messages", zap.Int("count", len(batch.Messages)), zap.Int("missed", batch.Missed))

	failed := batch.Missed
	for _, msg := range batch.Messages {
		seen, err := s.alreadyProcessed(ctx, msg.Id)
		if err != nil {
			return err
		}
		if seen {
			continue
		}

		outcome, err := s.ProcessMessage(ctx, msg)
		metrics.MailProcessed.WithLabelValues(outcome).Inc()
		if err != nil && !isFinalMailError(err) {
			s.Log.Error("Processing message failed, will retry", zap.String("message_id", msg.Id), zap.Error(err))
			failed++
			continue
		}
		if err != nil {
			s.Log.Warn("Processing message failed", zap.String("message_id", msg.Id), zap.Error(err))
		}

		if err := s.markProcessed(ctx, msg.Id); err != nil {
			return err
		}
	}

	if failed > 0 {
		s.Log.Warn("Mailbox bookmark kept, some messages are pending", zap.Int("pending", failed), zap.Uint64("history_id", state.LastHistoryID))
		return nil
	}
	if batch.HistoryID > state.LastHistoryID {
		if err := s.DB.WithContext(ctx).Model(&state).Update("last_history_id", batch.HistoryID).Error; err != nil {
			return fmt.Errorf("saving mailbox bookmark: %w", err)
		}
		s.Log.Info("Mailbox bookmark updated", zap.Uint64("history_id", batch.HistoryID))
	}
	return nil
}

// mailBatch is one sync's worth of messages. HistoryID is where the next
// sync should start; Missed counts messages that could not be fetched.
type mailBatch struct {
	Messages  []*gmail.Message
	HistoryID uint64
	Missed    int
}

// isFinalMailError reports errors that retrying the message cannot fix: the
// candidate moved or disappeared since the message was matched.
func isFinalMailError(err error) bool {
	return errors.Is(err, ErrStatusConflict) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidStatus)
}

// performFullSync lists recent relevant messages and anchors the bookmark at
// the mailbox's current history ID.
func (s *EmailService) performFullSync(ctx context.Context) (*mailBatch, error) {
	var resp *gmail.ListMessagesResponse
	err := s.retry(ctx, 3, time.Second, func() error {
		var e error
		resp, e = s.Gmail.Users.Messages.List(s.Mailbox).Q(bootstrapQuery).MaxResults(50).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	var profile *gmail.Profile
	err = s.retry(ctx, 3, time.Second, func() error {
		var e error
		profile, e = s.Gmail.Users.GetProfile(s.Mailbox).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, fmt.Errorf("reading mailbox profile: %w", err)
	}

	batch := s.expandMessages(ctx, resp.Messages)
	batch.HistoryID = profile.HistoryId
	return batch, nil
}

// performIncrementalSync asks for every message added since startID, across
// all history pages.
func (s *EmailService) performIncrementalSync(ctx context.Context, startID uint64) (*mailBatch, error) {
	var (
		headers   []*gmail.Message
		historyID uint64
	)
	err := s.retry(ctx, 3, time.Second, func() error {
		headers, historyID = nil, 0
		return s.Gmail.Users.History.List(s.Mailbox).
			StartHistoryId(startID).
			HistoryTypes("messageAdded").
			Pages(ctx, func(resp *gmail.ListHistoryResponse) error {
				for _, h := range resp.History {
					for _, added := range h.MessagesAdded {
						if added.Message != nil {
							headers = append(headers, added.Message)
						}
					}
				}
				historyID = max(historyID, resp.HistoryId)
				return nil
			})
	})
	if err != nil {
		return nil, err
	}

	batch := s.expandMessages(ctx, headers)
	batch.HistoryID = historyID
	return batch, nil
}

// expandMessages fetches full messages. Messages that keep failing are
// logged and counted as missed.
func (s *EmailService) expandMessages(ctx context.Context, headers []*gmail.Message) *mailBatch {
	batch := &mailBatch{}
	for _, h := range headers {
		var msg *gmail.Message
		err := s.retry(ctx, 2, 500*time.Millisecond, func() error {
			var e error
			msg, e = s.Gmail.Users.Messages.Get(s.Mailbox, h.Id).Context(ctx).Do()
			return e
		})
		if err != nil {
			s.Log.Warn("Fetching message failed", zap.String("message_id", h.Id), zap.Error(err))
			batch.Missed++
			continue
		}
		batch.Messages = append(batch.Messages, msg)
	}
	return batch
}

// ProcessMessage matches a message to a candidate, classifies it and moves
// the candidate when the email calls for it. Candidates that were already
// rejected or offered are left alone.
func (s *EmailService) ProcessMessage(ctx context.Context, msg *gmail.Message) (string, error) {
	headers := parseHeaders(msg)
	subject, sender := headers["Subject"], headers["From"]
	log := s.Log.With(zap.String("message_id", msg.Id), zap.String("from", sender))

	candidate, err := s.Matcher.FindCandidateFromEmail(ctx, sender)
	if err != nil {
		return MailFailed, fmt.Errorf("matching sender: %w", err)
	}
	if candidate == nil {
		log.Debug("Skipped, sender is not a candidate")
		return MailNoCandidate, nil
	}
	log = log.With(zap.Uint("candidate_id", candidate.ID))

	if candidate.JobStatus == models.StatusRejected || candidate.JobStatus == models.StatusOffered {
		log.Info("Skipped, candidate already in a final status", zap.String("status", candidate.JobStatus))
		return MailTerminal, nil
	}

	jobTitle := ""
	if candidate.JobPosting != nil {
		jobTitle = candidate.JobPosting.Role
	}

	result, err := s.Classifier.ClassifyReply(ctx, candidate.Name, jobTitle, subject, getEmailBody(msg))
	if err != nil {
		return MailFailed, err
	}
	log.Info("Reply classified", zap.String("status", result.Status), zap.String("summary", result.Summary))

	current := candidate.JobStatus
	if current == "" {
		current = models.StatusNew
	}
	if result.Status == NoChange || result.Status == current {
		return MailNoChange, nil
	}

	details := fmt.Sprintf("Status changed to %s. Summary: %s", result.Status, result.Summary)
	if _, err := s.Board.transition(ctx, "", candidate.ID, current, result.Status, EventEmailUpdate, details); err != nil {
		return MailFailed, err
	}
	return MailMoved, nil
}

func (s *EmailService) alreadyProcessed(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.ProcessedEmail{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking processed messages: %w", err)
	}
	return count > 0, nil
}

func (s *EmailService) markProcessed(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedEmail{ID: id}).Error
	if err != nil {
		return fmt.Errorf("recording processed message: %w", err)
	}
	return nil
}

// retry runs f with exponential backoff. An expired history ID fails at once
// so the caller can switch to a full sync.
func (s *EmailService) retry(ctx context.Context, attempts uint, delay time.Duration, f func() error) error {
	return retry.Do(f,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return !isHistoryExpiredError(err) }),
		retry.OnRetry(func(n uint, err error) {
			s.Log.Warn("Mailbox API error, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

func isHistoryExpiredError(err error) bool {
	var gErr *googleapi.Error
	return errors.As(err, &gErr) && gErr.Code == http.StatusNotFound
}

func parseHeaders(msg *gmail.Message) map[string]string {
	res := make(map[string]string)
	if msg.Payload == nil {
		return res
	}
	for _, h := range msg.Payload.Headers {
		res[h.Name] = h.Value
	}
	return res
}

// getEmailBody prefers the top level body, then a plain text part, then an
// HTML part.
func getEmailBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		return decodeBody(msg.Payload.Body.Data)
	}
	for _, mimeType := range []string{"text/plain", "text/html"} {
		for _, part := range msg.Payload.Parts {
			if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
				return decodeBody(part.Body.Data)
			}
		}
	}
	return ""
}

func decodeBody(data string) string {
	if d, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(d)
	}
	d, _ := base64.RawURLEncoding.DecodeString(data)
	return string(d)
}
