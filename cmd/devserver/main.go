package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"veilchat/internal/domain"
)

type memoryStore struct {
	mu       sync.RWMutex
	users    map[string]domain.UserProfile
	sessions map[string][]domain.WireMessage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[string]domain.UserProfile),
		sessions: make(map[string][]domain.WireMessage),
	}
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	ms := newMemoryStore()

	http.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var p domain.UserProfile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		if p.ID == "" {
			http.Error(w, "id required", 400)
			return
		}
		ms.mu.Lock()
		ms.users[p.ID] = p
		ms.mu.Unlock()
		log.Println("registered user", p.ID)
		w.WriteHeader(200)
	})

	http.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/users/")
		ms.mu.RLock()
		p, ok := ms.users[id]
		ms.mu.RUnlock()
		if !ok {
			http.Error(w, "not found", 404)
			return
		}
		_ = json.NewEncoder(w).Encode(p)
	})

	http.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var m domain.WireMessage
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Timestamp == 0 {
			m.Timestamp = time.Now().UnixMilli()
		}
		m.Status = string(domain.StatusSent)
		sessionID := domain.SessionIDFor(m.SenderID, m.ReceiverID)
		ms.mu.Lock()
		ms.sessions[sessionID] = append(ms.sessions[sessionID], m)
		ms.mu.Unlock()
		_ = json.NewEncoder(w).Encode(m)
	})

	http.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/sessions/")
		sessionID, ok := strings.CutSuffix(path, "/messages")
		if !ok {
			http.Error(w, "not found", 404)
			return
		}
		ms.mu.RLock()
		msgs := ms.sessions[sessionID]
		ms.mu.RUnlock()
		if msgs == nil {
			msgs = []domain.WireMessage{}
		}
		_ = json.NewEncoder(w).Encode(msgs)
	})

	log.Println("dev server listening on", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
