// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, session status, and the built-in play page.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// sessionsResponse is the body of the /sessions status endpoint.
type sessionsResponse struct {
	Active int `json:"active"`
}

// WebSocketHandler upgrades the request and runs the game protocol over the
// resulting connection on its own goroutine.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	s.logger.Infof("WebSocket client connected from %s.", r.RemoteAddr)
	t := newWSTransport(conn, r.RemoteAddr, s)
	if !s.dispatch(t) {
		_ = t.WriteLine(shutdownMessage)
		_ = t.Close()
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "WordHunt server is running!")
}

// SessionsHandler reports the number of active game sessions.
func (s *Server) SessionsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sessionsResponse{Active: s.registry.Len()}); err != nil {
		s.logger.Errorf("Error encoding sessions response: %v", err)
	}
}

// PlayPageHandler serves an HTML page for playing over the WebSocket endpoint.
func PlayPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprint(w, playPage)
}

const playPage = `<!DOCTYPE html>
<html>
<head>
    <title>WordHunt</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #puzzle { font-size: 2em; letter-spacing: 0.2em; margin: 10px 0; }
        #log {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            background-color: #f9f9f9;
        }
        input[type="text"] { width: 300px; padding: 5px; margin-right: 10px; }
    </style>
</head>
<body>
    <h1>WordHunt</h1>
    <div id="puzzle">connecting...</div>
    <div id="log"></div>
    <form id="guess">
        <input type="text" id="word" autocomplete="off" placeholder="Your guess, or EndGame">
        <button type="submit">Send</button>
    </form>
    <script>
        const log = document.getElementById('log');
        const puzzle = document.getElementById('puzzle');
        const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
        let greeted = false;

        function append(text) {
            const line = document.createElement('div');
            line.textContent = text;
            log.appendChild(line);
            log.scrollTop = log.scrollHeight;
        }

        ws.onmessage = (event) => {
            if (!greeted || event.data.includes('|')) {
                const [display, count] = event.data.split('|');
                puzzle.textContent = display + ' (' + count + ' words)';
                greeted = true;
                return;
            }
            append(event.data);
        };
        ws.onclose = () => append('Disconnected.');

        document.getElementById('guess').addEventListener('submit', (event) => {
            event.preventDefault();
            const input = document.getElementById('word');
            if (input.value.trim() !== '') {
                append('> ' + input.value);
                ws.send(input.value);
            }
            input.value = '';
        });
    </script>
</body>
</html>
`
