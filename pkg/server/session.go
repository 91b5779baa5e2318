package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/loom-ui/loom/pkg/engine"
	loomerrors "github.com/loom-ui/loom/pkg/errors"
	"github.com/loom-ui/loom/pkg/render"
)

const (
	// writeWait is the time allowed to write one frame.
	writeWait = 10 * time.Second
	// pongWait is the time allowed between pongs from the client.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = pongWait * 9 / 10
	// maxFrameSize bounds a single client frame.
	maxFrameSize = 64 << 10
)

// session is one websocket connection. Frames are read and handled on the
// connection goroutine, one at a time; the pinger shares the write lock.
type session struct {
	id      string
	conn    *websocket.Conn
	log     logrus.FieldLogger
	limiter *rate.Limiter

	writeMu sync.Mutex
	once    sync.Once
	done    chan struct{}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response.
		loomerrors.Report(&loomerrors.LoomError{Op: "server.upgrade", Kind: loomerrors.KindTransport, Err: err})
		return
	}

	sess := &session{
		id:   uuid.NewString(),
		conn: conn,
		done: make(chan struct{}),
	}
	sess.log = s.log.WithField("session", sess.id)
	if s.opts.EventsPerSecond > 0 {
		sess.limiter = rate.NewLimiter(rate.Limit(s.opts.EventsPerSecond), s.opts.EventBurst)
	}

	s.track(sess)
	defer s.untrack(sess)
	defer sess.close(websocket.CloseNormalClosure, "")
	defer loomerrors.Recover("server.session")

	sess.log.WithField("remote", r.RemoteAddr).Info("session opened")
	defer sess.log.Info("session closed")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	s.run(ctx, sess)
}

// run sends the initial view, then reads, handles and answers frames until
// the connection fails or closes.
func (s *Server) run(ctx context.Context, sess *session) {
	if err := s.send(sess, s.engine.Render()); err != nil {
		return
	}

	sess.conn.SetReadLimit(maxFrameSize)
	sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go sess.ping()

	for {
		_, frame, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				loomerrors.Report(&loomerrors.LoomError{
					Op:      "server.read",
					Kind:    loomerrors.KindTransport,
					Session: sess.id,
					Err:     err,
				})
			}
			return
		}

		ev, err := engine.DecodeEvent(frame)
		if err != nil {
			if pe, ok := err.(*loomerrors.ParseError); ok {
				pe.Session = sess.id
			}
			s.metrics.MalformedFrame()
			loomerrors.Report(&loomerrors.LoomError{
				Op:      "server.decode",
				Kind:    loomerrors.KindParsing,
				Session: sess.id,
				Err:     err,
			})
			continue
		}

		if sess.limiter != nil {
			if err := sess.limiter.Wait(ctx); err != nil {
				return
			}
		}

		res, err := s.engine.Handle(ev)
		s.metrics.Event(eventLabel(ev.Kind), res.Outcome.String())
		if err != nil {
			// Already reported by the engine; the view below still reflects
			// whatever the callback changed before failing.
			s.metrics.CallbackFailed()
		}
		sess.log.WithFields(logrus.Fields{
			"event":   string(ev.Kind),
			"id":      uint64(ev.ID),
			"outcome": res.Outcome.String(),
		}).Debug("event handled")

		if res.View == nil {
			continue
		}
		if err := s.send(sess, *res.View); err != nil {
			return
		}
	}
}

// send encodes and writes one view. Encoding failures are reported and
// skipped; write failures end the session.
func (s *Server) send(sess *session, v render.View) error {
	data, err := render.Encode(v)
	if err != nil {
		loomerrors.Report(&loomerrors.LoomError{
			Op:      "server.encode",
			Kind:    loomerrors.KindRender,
			Session: sess.id,
			Err:     err,
		})
		return nil
	}
	if err := sess.write(websocket.TextMessage, data); err != nil {
		loomerrors.Report(&loomerrors.LoomError{
			Op:      "server.write",
			Kind:    loomerrors.KindTransport,
			Session: sess.id,
			Err:     err,
		})
		return err
	}
	return nil
}

func (sess *session) write(messageType int, data []byte) error {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sess.conn.WriteMessage(messageType, data)
}

func (sess *session) ping() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-sess.done:
			return
		case <-ticker.C:
			if err := sess.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close sends a close frame and releases the connection. It is safe to call
// more than once and from any goroutine.
func (sess *session) close(code int, reason string) {
	sess.once.Do(func() {
		close(sess.done)
		sess.writeMu.Lock()
		msg := websocket.FormatCloseMessage(code, reason)
		sess.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		sess.writeMu.Unlock()
		sess.conn.Close()
	})
}

// eventLabel bounds the metric label set to the known kinds.
func eventLabel(kind engine.EventKind) string {
	switch kind {
	case engine.EventClick, engine.EventInput:
		return string(kind)
	default:
		return "other"
	}
}
