// Package bilibili is a small client for the Bilibili live web API, the QR
// passport login and the danmaku TCP protocol.
package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/biliterm/internal/cachemanager"
	"github.com/zjrosen/biliterm/internal/log"
	"github.com/zjrosen/biliterm/internal/tracing"
)

const tracerName = "github.com/zjrosen/biliterm/internal/bilibili"

const (
	DefaultLiveBaseURL     = "https://api.live.bilibili.com"
	DefaultPassportBaseURL = "https://passport.bilibili.com"
	defaultUserAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// ErrNotLoggedIn is returned by calls that need session cookies.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-zero code in a web API response envelope.
type APIError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: code %d: %s", e.Endpoint, e.Code, e.Message)
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Data    T      `json:"data"`
}

// Options configures a Client. Zero values use the defaults.
type Options struct {
	Timeout         time.Duration
	CacheTTL        time.Duration
	LiveBaseURL     string
	PassportBaseURL string
	UserAgent       string
	Cookies         *CookieStore
	HTTPClient      *http.Client
}

type cacheKey string

// keyFor namespaces cache keys per endpoint.
func keyFor(prefix string) func(uint64) cacheKey {
	return func(id uint64) cacheKey {
		return cacheKey(prefix + ":" + strconv.FormatUint(id, 10))
	}
}

// Client talks to the web API. It is safe for concurrent use.
type Client struct {
	http         *http.Client
	liveBase     string
	passportBase string
	userAgent    string
	cookies      *CookieStore

	rooms *cachemanager.ReadThroughCache[cacheKey, RoomInfo, uint64]
	danmu *cachemanager.ReadThroughCache[cacheKey, DanmuInfo, uint64]
}

// NewClient creates a client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = cachemanager.DefaultExpiration
	}
	if opts.LiveBaseURL == "" {
		opts.LiveBaseURL = DefaultLiveBaseURL
	}
	if opts.PassportBaseURL == "" {
		opts.PassportBaseURL = DefaultPassportBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Cookies == nil {
		opts.Cookies = NewCookieStore("")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{
		http:         httpClient,
		liveBase:     strings.TrimRight(opts.LiveBaseURL, "/"),
		passportBase: strings.TrimRight(opts.PassportBaseURL, "/"),
		userAgent:    opts.UserAgent,
		cookies:      opts.Cookies,
	}
	c.rooms = cachemanager.NewReadThroughCache(
		cachemanager.NewInMemoryCacheManager[cacheKey, RoomInfo]("room_init", opts.CacheTTL, cachemanager.DefaultCleanupInterval),
		keyFor("room"),
		c.fetchRoomInit,
		opts.CacheTTL,
	)
	c.danmu = cachemanager.NewReadThroughCache(
		cachemanager.NewInMemoryCacheManager[cacheKey, DanmuInfo]("danmu_info", opts.CacheTTL, cachemanager.DefaultCleanupInterval),
		keyFor("danmu"),
		c.fetchDanmuInfo,
		opts.CacheTTL,
	)
	return c
}

// Cookies returns the credential store used for requests.
func (c *Client) Cookies() *CookieStore { return c.cookies }

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", "https://live.bilibili.com/")
	if h := c.cookies.Header(); h != "" {
		req.Header.Set("Cookie", h)
	}
	return req, nil
}

// do sends req and decodes the envelope into out. It returns the response so
// callers can read headers; the body is already closed.
func do[T any](c *Client, req *http.Request, endpoint string) (result T, _ *http.Response, err error) {
	ctx, span := otel.Tracer(tracerName).Start(req.Context(), tracing.SpanAPIRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(tracing.AttrAPIEndpoint, endpoint)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	req = req.WithContext(ctx)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug(log.CatAPI, "request failed", "endpoint", endpoint, "error", err)
		return result, nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int(tracing.AttrHTTPStatus, resp.StatusCode))
	log.Debug(log.CatAPI, "request done", "endpoint", endpoint, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return result, resp, fmt.Errorf("%s: unexpected status %s", endpoint, resp.Status)
	}

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return result, resp, fmt.Errorf("%s: decoding response: %w", endpoint, err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrAPICode, env.Code))
	if env.Code != 0 {
		msg := env.Message
		if msg == "" {
			msg = env.Msg
		}
		return result, resp, &APIError{Endpoint: endpoint, Code: env.Code, Message: msg}
	}
	return env.Data, resp, nil
}

// RoomInfo is the resolved identity of a live room.
type RoomInfo struct {
	RoomID     uint64 `json:"room_id"`
	ShortID    uint64 `json:"short_id"`
	UID        uint64 `json:"uid"`
	LiveStatus int    `json:"live_status"`
}

// Live reports whether the streamer is currently broadcasting.
func (r RoomInfo) Live() bool { return r.LiveStatus == 1 }

// RoomInit resolves a (possibly short) room id. Transient failures are
// retried; API errors are not.
func (c *Client) RoomInit(ctx context.Context, id uint64) (RoomInfo, error) {
	return backoff.Retry(ctx, func() (RoomInfo, error) {
		info, err := c.rooms.Get(ctx, id)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return info, backoff.Permanent(err)
		}
		return info, err
	},
		backoff.WithBackOff(newBackOff()),
		backoff.WithMaxTries(3),
		backoff.WithNotify(func(err error, next time.Duration) {
			trace.SpanFromContext(ctx).AddEvent(tracing.EventAPIRetry,
				trace.WithAttributes(attribute.String("error", err.Error())))
			log.Warn(log.CatAPI, "room_init retry", "room", id, "error", err, "in", next)
		}),
	)
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

func (c *Client) fetchRoomInit(ctx context.Context, id uint64) (RoomInfo, error) {
	u := c.liveBase + "/room/v1/Room/room_init?id=" + strconv.FormatUint(id, 10)
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return RoomInfo{}, err
	}
	info, _, err := do[RoomInfo](c, req, "room_init")
	return info, err
}

// DanmuHost is one danmaku server endpoint.
type DanmuHost struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	WSSPort int    `json:"wss_port"`
	WSPort  int    `json:"ws_port"`
}

// DanmuInfo carries the auth token and servers for a room's danmaku stream.
type DanmuInfo struct {
	Token    string      `json:"token"`
	HostList []DanmuHost `json:"host_list"`
}

// DanmuInfo fetches the danmaku token and server list for a real room id.
func (c *Client) DanmuInfo(ctx context.Context, roomID uint64) (DanmuInfo, error) {
	return c.danmu.Get(ctx, roomID)
}

func (c *Client) fetchDanmuInfo(ctx context.Context, roomID uint64) (DanmuInfo, error) {
	u := c.liveBase + "/xlive/web-room/v1/index/getDanmuInfo?type=0&id=" + strconv.FormatUint(roomID, 10)
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return DanmuInfo{}, err
	}
	info, _, err := do[DanmuInfo](c, req, "getDanmuInfo")
	if err != nil {
		return info, err
	}
	if len(info.HostList) == 0 {
		return info, fmt.Errorf("getDanmuInfo: empty host list")
	}
	return info, nil
}

// InvalidateDanmuInfo drops a cached token, e.g. after an auth failure.
func (c *Client) InvalidateDanmuInfo(ctx context.Context, roomID uint64) {
	c.danmu.Invalidate(ctx, roomID)
}

// SendDanmaku posts text to a live room's chat. It needs login cookies.
func (c *Client) SendDanmaku(ctx context.Context, roomID uint64, text string) error {
	csrf := c.cookies.Get(CookieCSRF)
	if csrf == "" || c.cookies.Get(CookieSession) == "" {
		return ErrNotLoggedIn
	}

	form := url.Values{}
	form.Set("bubble", "0")
	form.Set("msg", text)
	form.Set("color", "16777215")
	form.Set("mode", "1")
	form.Set("fontsize", "25")
	form.Set("rnd", strconv.FormatInt(time.Now().Unix(), 10))
	form.Set("roomid", strconv.FormatUint(roomID, 10))
	form.Set("csrf", csrf)
	form.Set("csrf_token", csrf)

	req, err := c.newRequest(ctx, http.MethodPost, c.liveBase+"/msg/send", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, _, err = do[json.RawMessage](c, req, "msg/send")
	if err != nil {
		return err
	}
	log.Info(log.CatAPI, "danmaku sent", "room", roomID)
	return nil
}
