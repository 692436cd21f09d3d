package facebook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"content_fetcher/internal/connector/apiclient"
	"content_fetcher/internal/domain"
)

type FacebookTestSuite struct {
	suite.Suite
	server       *httptest.Server
	conn         *Connector
	searchFails  bool
	postRequests int
}

func (s *FacebookTestSuite) SetupTest() {
	s.searchFails = false
	s.postRequests = 0

	mux := http.NewServeMux()
	mux.HandleFunc("/pages/search", func(w http.ResponseWriter, r *http.Request) {
		if s.searchFails {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"message":"(#10) This endpoint requires the 'pages_read_engagement' permission","type":"OAuthException","code":10}}`)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"111","name":"Local News"}]}`)
	})
	mux.HandleFunc("/app", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"999","name":"fetcher"}`)
	})
	mux.HandleFunc("/111/posts", func(w http.ResponseWriter, r *http.Request) {
		s.postRequests++
		if r.URL.Query().Get("after") == "" {
			fmt.Fprintf(w, `{"data":[
				{"id":"111_1","message":"First line of a long post\nsecond line #חדשות","created_time":"2024-03-01T10:00:00+0000","permalink_url":"https://www.facebook.com/111/posts/1","reactions":{"summary":{"total_count":12}},"comments":{"summary":{"total_count":3}},"shares":{"count":2}},
				{"id":"111_2","created_time":"2024-03-01T09:00:00+0000"},
				{"id":"111_3","full_picture":"https://img/p3.jpg","created_time":"2024-03-01T08:00:00+0000","attachments":{"data":[{"media_type":"album","subattachments":{"data":[{"media_type":"photo","media":{"image":{"src":"https://img/p3.jpg"}}},{"media_type":"photo","media":{"image":{"src":"https://img/p3b.jpg"}}}]}}]}}
			],"paging":{"next":"%s/111/posts?after=abc&access_token=x"}}`, s.server.URL)
			return
		}
		fmt.Fprint(w, `{"data":[
			{"id":"111_4","message":"clip","created_time":"2024-02-28T08:00:00+0000","attachments":{"data":[{"media_type":"video","media":{"image":{"src":"https://img/v.jpg"}}}]}}
		],"paging":{}}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/")
		if id != "111" && id != "localnews" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"message":"Unsupported get request.","type":"GraphMethodException","code":100}}`)
			return
		}
		fmt.Fprint(w, `{"id":"111","name":"Local News","link":"https://www.facebook.com/localnews","fan_count":3400,"picture":{"data":{"url":"https://img/avatar.jpg"}}}`)
	})
	s.server = httptest.NewServer(mux)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	conn, err := New(Config{
		AppID:     "app",
		AppSecret: "secret",
		BaseURL:   s.server.URL,
		Client:    apiclient.Config{Timeout: time.Second, MaxAttempts: 1},
	}, logger)
	s.Require().NoError(err)
	s.conn = conn
}

func (s *FacebookTestSuite) TearDownTest() {
	s.server.Close()
}

func TestFacebookTestSuite(t *testing.T) {
	suite.Run(t, new(FacebookTestSuite))
}

func (s *FacebookTestSuite) TestFetchContent_PaginatesAndSkipsEmptyPosts() {
	items, err := s.conn.FetchContent(context.Background(), "localnews", domain.FetchOptions{MaxItems: 50})

	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.Equal(2, s.postRequests)
	s.Equal([]string{"111_1", "111_3", "111_4"}, []string{items[0].PlatformID, items[1].PlatformID, items[2].PlatformID})
}

func (s *FacebookTestSuite) TestFetchContent_Transform() {
	items, err := s.conn.FetchContent(context.Background(), "111", domain.FetchOptions{MaxItems: 50})
	s.Require().NoError(err)

	text := items[0]
	s.Equal(domain.ContentText, text.Type)
	s.Equal("First line of a long post", text.Title)
	s.Equal("First line of a long post second line #חדשות", text.Description)
	s.Equal([]string{"חדשות"}, text.Tags)
	s.Equal("he", text.Language)
	s.Equal(int64(12), *text.Metrics.Likes)
	s.Equal(int64(3), *text.Metrics.Comments)
	s.Equal(int64(2), *text.Metrics.Shares)
	s.Equal("Local News", text.Author.Name)
	s.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), text.PublishedAt.UTC())

	album := items[1]
	s.Equal(domain.ContentImage, album.Type)
	s.Equal("Facebook Post", album.Title)
	s.Equal([]string{"https://img/p3.jpg", "https://img/p3b.jpg"}, album.MediaURLs)
	s.Equal("https://www.facebook.com/111_3", album.ContentURL)

	s.Equal(domain.ContentVideo, items[2].Type)
}

func (s *FacebookTestSuite) TestFetchContent_BoundedByMaxItems() {
	items, err := s.conn.FetchContent(context.Background(), "111", domain.FetchOptions{MaxItems: 1})

	s.Require().NoError(err)
	s.Len(items, 1)
	s.Equal(1, s.postRequests)
}

func (s *FacebookTestSuite) TestFetchContent_UnknownPage() {
	_, err := s.conn.FetchContent(context.Background(), "nope", domain.FetchOptions{MaxItems: 10})

	var srcErr *domain.SourceError
	s.Require().True(errors.As(err, &srcErr))
	s.Contains(err.Error(), "not found")
}

func (s *FacebookTestSuite) TestSearchContent_UsesFirstMatchingPage() {
	items, err := s.conn.SearchContent(context.Background(), "local news", domain.FetchOptions{MaxItems: 50})

	s.Require().NoError(err)
	s.Len(items, 3)
}

func (s *FacebookTestSuite) TestSearchContent_FallsBackToPageID() {
	s.searchFails = true

	items, err := s.conn.SearchContent(context.Background(), "localnews", domain.FetchOptions{MaxItems: 50})

	s.Require().NoError(err)
	s.Len(items, 3)
}

func (s *FacebookTestSuite) TestGetSourceInfo() {
	info, err := s.conn.GetSourceInfo(context.Background(), "localnews")
	s.Require().NoError(err)
	s.Equal("111", info.ID)
	s.Equal(int64(3400), *info.SubscriberCount)
	s.Equal("https://img/avatar.jpg", info.AvatarURL)

	missing, err := s.conn.GetSourceInfo(context.Background(), "ghost")
	s.NoError(err)
	s.Nil(missing)
}

func (s *FacebookTestSuite) TestValidateCredentials() {
	s.True(s.conn.ValidateCredentials(context.Background()))
}
