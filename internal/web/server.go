// Package web serves decoder status, records and a live update stream.
package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pmodgps/internal/gps"
	"pmodgps/internal/nmea"
)

// Source is the read side of gps.Service.
type Source interface {
	Snapshot() gps.Snapshot
	Record(k nmea.Kind) (any, bool)
	History() *gps.History
}

type StatusResponse struct {
	Service   string       `json:"service"`
	NowUTC    string       `json:"now_utc"`
	UptimeSec int64        `json:"uptime_sec"`
	Streams   int          `json:"streams"`
	GPS       gps.Snapshot `json:"gps"`
}

type SentencesResponse struct {
	NowUTC    string      `json:"now_utc"`
	Dropped   uint64      `json:"dropped"`
	Sentences []gps.Entry `json:"sentences"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler wires the HTTP API. stream and metrics may be nil.
func Handler(src Source, stream *UpdateBroadcaster, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()
	started := time.Now()

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}
		now := time.Now()
		writeJSON(w, StatusResponse{
			Service:   "pmodgps",
			NowUTC:    now.UTC().Format(time.RFC3339Nano),
			UptimeSec: int64(now.Sub(started).Seconds()),
			Streams:   stream.Subscribers(),
			GPS:       src.Snapshot(),
		})
	})

	mux.HandleFunc("/api/records/{kind}", func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}
		k, err := nmea.ParseKind(r.PathValue("kind"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		rec, ok := src.Record(k)
		if !ok {
			http.Error(w, fmt.Sprintf("no %s sentence decoded yet", k), http.StatusNotFound)
			return
		}
		writeJSON(w, rec)
	})

	mux.HandleFunc("/api/sentences", func(w http.ResponseWriter, r *http.Request) {
		if !allowGet(w, r) {
			return
		}
		tail := 200
		if s := strings.TrimSpace(r.URL.Query().Get("tail")); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v < 1 || v > 5000 {
				http.Error(w, "tail must be an integer in [1,5000]", http.StatusBadRequest)
				return
			}
			tail = v
		}
		entries, dropped := src.History().Tail(tail)
		if entries == nil {
			entries = []gps.Entry{}
		}

		if strings.EqualFold(r.URL.Query().Get("format"), "text") {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-store")
			if dropped > 0 {
				_, _ = fmt.Fprintf(w, "[dropped=%d]\n", dropped)
			}
			for _, e := range entries {
				_, _ = w.Write([]byte(e.Line))
				_, _ = w.Write([]byte("\n"))
			}
			return
		}
		writeJSON(w, SentencesResponse{
			NowUTC:    time.Now().UTC().Format(time.RFC3339Nano),
			Dropped:   dropped,
			Sentences: entries,
		})
	})

	if stream != nil {
		mux.HandleFunc("/api/stream", func(w http.ResponseWriter, r *http.Request) {
			serveStream(w, r, stream)
		})
	}
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}
	return mux
}

func serveStream(w http.ResponseWriter, r *http.Request, stream *UpdateBroadcaster) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, ch := stream.Subscribe(16)
	defer stream.Unsubscribe(id)

	// The reader only exists to notice the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web stream read: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case u, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(u); err != nil {
				return
			}
		}
	}
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}
