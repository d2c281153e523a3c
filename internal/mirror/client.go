// Package mirror talks to the remote document store that backs cloud
// backup. The store is a per-user document tree: users/{uid}/books/{bookId}
// with a nested chapters collection keyed by stringified position.
//
// Every operation requires a signed-in user's uid. The client never decides
// sync policy; it only moves documents. Reads retry on rate limits and
// server errors; writes are single-shot, so the caller's synced flag
// advances only after a write returns nil.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Client interfaces with the mirror document API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a mirror client for the given service URL. The token
// authenticates the signed-in user's requests.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

type bookListResponse struct {
	Documents []BookDocument `json:"documents"`
}

type chapterListResponse struct {
	Documents []ChapterDocument `json:"documents"`
}

type batchWriteRequest struct {
	Documents []ChapterDocument `json:"documents"`
}

// ListBooks fetches every book document under users/{uid}/books.
func (c *Client) ListBooks(ctx context.Context, uid string) ([]BookDocument, error) {
	if uid == "" {
		return nil, ErrNotSignedIn
	}

	var resp bookListResponse
	if err := c.getWithRetry(ctx, c.booksURL(uid), &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// ListBookIDs fetches the set of book ids present in the user's remote tree.
func (c *Client) ListBookIDs(ctx context.Context, uid string) ([]string, error) {
	docs, err := c.ListBooks(ctx, uid)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// UpsertBook writes the book document at users/{uid}/books/{bookId}.
func (c *Client) UpsertBook(ctx context.Context, uid string, doc BookDocument) error {
	if uid == "" {
		return ErrNotSignedIn
	}
	return c.write(ctx, http.MethodPut, c.bookURL(uid, doc.ID), doc)
}

// DeleteBook removes the book document and its chapter subtree.
func (c *Client) DeleteBook(ctx context.Context, uid, bookID string) error {
	if uid == "" {
		return ErrNotSignedIn
	}
	return c.write(ctx, http.MethodDelete, c.bookURL(uid, bookID), nil)
}

// UpsertChapter writes one chapter document keyed by its stringified
// position.
func (c *Client) UpsertChapter(ctx context.Context, uid, bookID string, doc ChapterDocument) error {
	if uid == "" {
		return ErrNotSignedIn
	}
	u := c.bookURL(uid, bookID) + "/chapters/" + url.PathEscape(doc.Position)
	return c.write(ctx, http.MethodPut, u, doc)
}

// BatchUpsertChapters writes a book's chapter documents in one atomic
// multi-document request: either every document lands or none do.
func (c *Client) BatchUpsertChapters(ctx context.Context, uid, bookID string, docs []ChapterDocument) error {
	if uid == "" {
		return ErrNotSignedIn
	}
	if len(docs) == 0 {
		return nil
	}
	u := c.bookURL(uid, bookID) + "/chapters:batchWrite"
	return c.write(ctx, http.MethodPost, u, batchWriteRequest{Documents: docs})
}

// ListChapters fetches every chapter document for a book.
func (c *Client) ListChapters(ctx context.Context, uid, bookID string) ([]ChapterDocument, error) {
	if uid == "" {
		return nil, ErrNotSignedIn
	}

	var resp chapterListResponse
	if err := c.getWithRetry(ctx, c.bookURL(uid, bookID)+"/chapters", &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

func (c *Client) booksURL(uid string) string {
	return fmt.Sprintf("%s/users/%s/books", c.baseURL, url.PathEscape(uid))
}

func (c *Client) bookURL(uid, bookID string) string {
	return c.booksURL(uid) + "/" + url.PathEscape(bookID)
}

func (c *Client) getWithRetry(ctx context.Context, url string, out any) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateRetryDelay(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = c.doGet(ctx, url, out)
		if lastErr == nil {
			return nil
		}

		// Only retry on rate limits or server errors.
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doGet(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) write(ctx context.Context, method, url string, body any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return ErrNotSignedIn
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if err == ErrRateLimited {
		return true
	}
	if _, ok := err.(*ServerError); ok {
		return true
	}
	return false
}
