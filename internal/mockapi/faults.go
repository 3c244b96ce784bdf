package mockapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/Gilberthb/Umunsi-sub002/pkg/httputil"
)

type routeKey struct {
	method string
	path   string
}

type fault struct {
	status    int
	remaining int
}

// faults answers scripted failures ahead of the real handlers and counts
// every request it sees. Paths are matched exactly, without the query.
type faults struct {
	mu      sync.Mutex
	pending map[routeKey]*fault
	hits    map[routeKey]int
}

func newFaults() *faults {
	return &faults{pending: make(map[routeKey]*fault), hits: make(map[routeKey]int)}
}

func (f *faults) failNext(method, path string, status, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if times <= 0 {
		delete(f.pending, routeKey{method, path})
		return
	}
	f.pending[routeKey{method, path}] = &fault{status: status, remaining: times}
}

func (f *faults) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[routeKey{method, path}]
}

// take records a hit and returns the status to fail with, or 0.
func (f *faults) take(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := routeKey{method, strings.TrimRight(path, "/")}
	f.hits[key]++
	ft, ok := f.pending[key]
	if !ok {
		return 0
	}
	ft.remaining--
	if ft.remaining <= 0 {
		delete(f.pending, key)
	}
	return ft.status
}

func (f *faults) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status := f.take(r.Method, r.URL.Path); status != 0 {
			httputil.WriteJSON(w, status, httputil.ErrorResponse{
				Message: "injected failure: " + http.StatusText(status),
				Code:    "INJECTED",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
