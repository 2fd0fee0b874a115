package main

import (
	"bytes"
	_ "embed"
	"log"
	"net/http"
	"strings"
	"text/template"
	"time"
)

//go:embed feed.xml
var feedTemplate string

//go:embed home.html
var homePage []byte

//go:embed search.json
var searchJSON []byte

//go:embed posts/structured.html
var structuredPost []byte

//go:embed posts/attributes.html
var attributesPost []byte

//go:embed posts/plain.html
var plainPost []byte

var posts = map[string][]byte{
	"/p/structured": structuredPost,
	"/p/attributes": attributesPost,
	"/p/plain":      plainPost,
}

var feed = template.Must(template.New("feed").Parse(feedTemplate))

// Run with provider.search.base_url=http://localhost:8090 and analyze
// http://localhost:8090 to exercise every source.
func main() {
	http.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		if err := feed.Execute(&body, map[string]string{"Base": "http://" + r.Host}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		write(w, r, body.Bytes())
	})

	http.HandleFunc("/p/", func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		page, ok := posts[strings.TrimRight(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			log.Printf("[Publication] %s %s - 404", r.Method, r.URL.Path)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		write(w, r, page)
	})

	http.HandleFunc("/api/v1/publication/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		write(w, r, searchJSON)
	})

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		write(w, r, homePage)
	})

	log.Println("Mock publication running on :8090")
	server := &http.Server{
		Addr:         ":8090",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

func write(w http.ResponseWriter, r *http.Request, body []byte) {
	if _, err := w.Write(body); err != nil {
		log.Printf("[Publication] write error: %v", err)
		return
	}

	log.Printf("[Publication] %s %s - 200 OK", r.Method, r.URL.Path)
}
