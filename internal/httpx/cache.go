package httpx

import (
	"fmt"
	"net/http"
)

func PublicCache(w http.ResponseWriter, maxAge int) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAge, maxAge*2))
}

func PrivateCache(w http.ResponseWriter, maxAge, staleWhileRevalidate int) {
	w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d, stale-while-revalidate=%d", maxAge, staleWhileRevalidate))
}

func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}
