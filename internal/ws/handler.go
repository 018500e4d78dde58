package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/partyroom-backend/internal/hub"
	"github.com/DoyleJ11/partyroom-backend/internal/identity"
	"github.com/DoyleJ11/partyroom-backend/internal/types"
)

type Options struct {
	OutboxSize     int
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	OriginPatterns []string
	Clock          clockwork.Clock
	IDs            identity.Generator
	Logger         *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.OutboxSize <= 0 {
		o.OutboxSize = 64
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.IDs == nil {
		o.IDs = identity.New()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

func Handler(reg Registry, opts Options) http.HandlerFunc {
	opts = opts.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			opts.Logger.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		s := newSession(opts.IDs.ConnectionID(), opts.OutboxSize)
		log := opts.Logger.With(zap.String("conn_id", s.id))
		log.Debug("connection opened")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// A disconnect is an implicit leave and always succeeds.
		defer func() {
			err := reg.Leave(context.WithoutCancel(ctx), s.id, "")
			if err != nil && !errors.Is(err, hub.ErrClosed) {
				log.Warn("leave on disconnect failed", zap.Error(err))
			}
			log.Debug("connection closed")
		}()

		go writeLoop(ctx, cancel, conn, s, opts, log)

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil || cm.Type == "" {
				s.send(ackFor(cm.ID, nil, ErrBadRequest, log))
				continue
			}
			if cm.Type == types.ReqPing {
				s.send(types.Push{Type: types.PushPong, RequestID: cm.ID, Data: types.Pong{ServerTime: opts.Clock.Now()}})
				continue
			}

			res, err := dispatch(ctx, reg, s, cm)
			s.send(ackFor(cm.ID, res, err, log))
		}
	}
}

// writeLoop is the only writer on conn. It also keeps the connection alive
// with pings and closes it when the session is kicked for being too slow.
func writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, s *session, opts Options, log *zap.Logger) {
	defer cancel()
	ping := opts.Clock.NewTicker(opts.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-s.kicked:
			log.Info("closing slow connection")
			_ = conn.Close(websocket.StatusPolicyViolation, "too slow")
			return

		case msg := <-s.out:
			wctx, wcancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err := wsjson.Write(wctx, conn, msg)
			wcancel()
			if err != nil {
				log.Debug("write failed", zap.Error(err))
				return
			}

		case <-ping.Chan():
			pctx, pcancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				log.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}

func ackFor(id string, data any, err error, log *zap.Logger) types.Ack {
	if err == nil {
		return types.Ack{Type: types.AckType, ID: id, OK: true, Data: data}
	}
	body, internal := errorBody(err)
	if internal {
		log.Error("request failed", zap.String("request_id", id), zap.Error(err))
	}
	return types.Ack{Type: types.AckType, ID: id, OK: false, Error: body}
}
