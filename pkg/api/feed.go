// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	feedWriteTimeout = 10 * time.Second
	feedPingInterval = 30 * time.Second
)

// handleFeed upgrades to a websocket and streams committed store
// changes to the client. An optional ?collection= filter narrows the
// stream. The client side of the connection is read only to detect
// disconnects.
func (s *Server) handleFeed(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed: " + err.Error())
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.FeedClients.Inc()
		defer s.metrics.FeedClients.Dec()
	}

	collection := c.Query("collection")
	changes, cancel := s.notifier.Subscribe()
	defer cancel()

	// Reader goroutine: we never expect client messages, only closes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(feedPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case change, ok := <-changes:
			if !ok {
				return
			}
			if collection != "" && change.Collection != collection {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteJSON(change); err != nil {
				return
			}
		}
	}
}
