package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sllt/railbot/internal/chatlog"
	"github.com/sllt/railbot/internal/session"
	"github.com/sllt/railbot/internal/ticket"
	"go.uber.org/zap"
)

const (
	cmdNextPage = "+next page"
	cmdPrevPage = "+previous page"
)

// Reply is the engine's answer to one inbound message.
type Reply struct {
	Text    string
	IsError bool
}

func errReply(msg string) Reply { return Reply{Text: msg, IsError: true} }

// Engine processes one text message per turn: parse or page or refine, then
// format. Each conversation's session is looked up by ID; a message is fully
// handled before the reply is returned.
type Engine struct {
	parser   *ticket.Parser
	source   *ticket.Client
	refiner  *ticket.Refiner
	sessions *session.Store
	archive  *chatlog.Repo // optional
	validate *validator.Validate
	idleTTL  time.Duration
	log      *zap.Logger

	// Now is injectable for the idle-expiry tests.
	Now func() time.Time
}

func New(parser *ticket.Parser, source *ticket.Client, refiner *ticket.Refiner,
	sessions *session.Store, archive *chatlog.Repo, idleTTL time.Duration, log *zap.Logger) *Engine {
	if idleTTL <= 0 {
		idleTTL = session.DefaultIdleTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		parser:   parser,
		source:   source,
		refiner:  refiner,
		sessions: sessions,
		archive:  archive,
		validate: validator.New(),
		idleTTL:  idleTTL,
		log:      log,
		Now:      time.Now,
	}
}

// HandleMessage processes one inbound message. The boolean tells the host
// whether the message was consumed; false means the text is not a ticket
// command and further handler processing should continue.
func (e *Engine) HandleMessage(ctx context.Context, conversationID, text string) (Reply, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, false
	}

	sess := e.sessions.Get(conversationID)
	sess.Lock()
	defer sess.Unlock()

	now := e.Now()
	if sess.ExpireIfIdle(now, e.idleTTL) {
		e.log.Debug("cleared idle conversation state",
			zap.String("conversation", conversationID))
	}
	sess.Touch(now)

	switch {
	case text == cmdNextPage || text == cmdPrevPage:
		return e.handlePagination(ctx, sess, text), true
	case strings.HasPrefix(text, "+"):
		return e.handleRefinement(ctx, sess, strings.TrimSpace(text[1:])), true
	case e.parser.IsQuery(text):
		return e.handleQuery(ctx, sess, text), true
	default:
		return Reply{}, false
	}
}

func (e *Engine) handleQuery(ctx context.Context, sess *session.Session, text string) Reply {
	q, err := e.parser.Parse(text)
	if err != nil {
		return e.errorReply(err)
	}
	if err := e.validate.Struct(q); err != nil {
		return e.validationReply(err)
	}

	tod := q.TimeOfDay
	if tod == "" {
		tod = "all day"
	}
	e.record(ctx, sess, "user",
		fmt.Sprintf("query %s %s to %s, date %s, time %s", q.Class, q.Origin, q.Destination, q.Date, tod))

	raw, err := e.source.Search(ctx, q)
	if err != nil {
		return e.errorReply(err)
	}

	records := ticket.Process(raw, q.Class, q.TimeOfDay, e.log)
	if len(records) == 0 {
		// zero results leave the previous result set intact
		return errReply("no trains found for that query")
	}

	sess.SetResults(q, records)
	return e.pageReply(ctx, sess)
}

func (e *Engine) handlePagination(ctx context.Context, sess *session.Session, cmd string) Reply {
	var err error
	if cmd == cmdNextPage {
		err = sess.NextPage()
	} else {
		err = sess.PrevPage()
	}
	if err != nil {
		return e.errorReply(err)
	}
	return e.pageReply(ctx, sess)
}

func (e *Engine) handleRefinement(ctx context.Context, sess *session.Session, question string) Reply {
	if len(sess.Results) == 0 {
		return e.errorReply(session.ErrNoPriorQuery)
	}
	if question == "" {
		return errReply(`tell me what to filter by, e.g. "+second class under 500"`)
	}

	e.record(ctx, sess, "user", "filter: "+question)

	narrowed := e.refiner.Refine(ctx, question, sess.Results)
	if len(narrowed) == 0 {
		return errReply("no trains match that filter")
	}

	sess.Narrow(narrowed)
	return e.pageReply(ctx, sess)
}

// pageReply formats the session's current page and logs it as the
// assistant's turn.
func (e *Engine) pageReply(ctx context.Context, sess *session.Session) Reply {
	text := ticket.FormatPage(sess.PageData(), sess.PageStartIndex(), sess.CurrentPage, sess.TotalPages())
	e.record(ctx, sess, "assistant", text)
	return Reply{Text: text}
}

// record appends to the in-session conversation log and mirrors the entry to
// the archive when one is configured. Archive failures never surface.
func (e *Engine) record(ctx context.Context, sess *session.Session, role, text string) {
	sess.Append(role, text)
	if e.archive != nil {
		if err := e.archive.Insert(ctx, sess.ID, role, text); err != nil {
			e.log.Warn("message archive insert failed", zap.Error(err))
		}
	}
}

// errorReply converts the error taxonomy into short user-facing diagnostics.
// Nothing internal ever leaks into the reply text.
func (e *Engine) errorReply(err error) Reply {
	switch {
	case errors.Is(err, ticket.ErrParameterCount):
		return errReply("incorrect number of parameters, check the query format")
	case errors.Is(err, ticket.ErrDateTimeFormat):
		return errReply("invalid date/time format")
	case errors.Is(err, ticket.ErrNoData):
		return errReply("no trains found for that query")
	case errors.Is(err, ticket.ErrUpstreamUnavailable):
		return errReply("ticket lookup is temporarily unavailable, please try again later")
	case errors.Is(err, session.ErrNoPriorQuery):
		return errReply("run a ticket query first")
	case errors.Is(err, session.ErrAtFirstPage):
		return errReply("already at the first page")
	case errors.Is(err, session.ErrAtLastPage):
		return errReply("already at the last page")
	}
	e.log.Error("query handling failed", zap.Error(err))
	return errReply("the query service is temporarily unavailable, please try again later")
}

func (e *Engine) validationReply(err error) Reply {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Destination" && fe.Tag() == "nefield" {
				return errReply("origin and destination must be different")
			}
		}
	}
	e.log.Warn("query validation failed", zap.Error(err))
	return errReply("invalid date/time format")
}
