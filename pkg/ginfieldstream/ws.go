package ginfieldstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
	"github.com/deepankarm/fieldstream/pkg/llmstream"
)

// extractWS reads chunks from the socket and answers each with whatever
// deltas it produced.
func (s *Server) extractWS(c *gin.Context) {
	sink, err := s.sinkName(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	stream := fieldstream.Extract(wsSource(conn), s.streamOptions(c, sink)...)
	ctx := c.Request.Context()

	for {
		d, err := stream.NextDelta(ctx)
		var msg WSMessage
		switch {
		case errors.Is(err, io.EOF):
			done := newDonePayload(stream.Stats())
			msg = WSMessage{Type: WSDone, Done: &done}
		case err != nil:
			e := newErrorPayload(err)
			msg = WSMessage{Type: WSError, Error: &e}
		default:
			msg = WSMessage{Type: WSDelta, Text: d.Text, Resync: d.Resync}
		}

		if werr := conn.WriteJSON(msg); werr != nil {
			s.logger.Debug("websocket write failed", zap.Error(werr))
			return
		}
		if err != nil {
			break
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// wsSource reads chunk messages until an end message or a normal close.
func wsSource(conn *websocket.Conn) fieldstream.TextStream {
	return llmstream.Func(func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "", io.EOF
			}
			return "", err
		}
		switch msg.Type {
		case WSChunk:
			return msg.Text, nil
		case WSEnd:
			return "", io.EOF
		default:
			return "", fmt.Errorf("unexpected websocket message type %q", msg.Type)
		}
	})
}
