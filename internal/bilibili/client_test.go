package bilibili

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(Options{
		LiveBaseURL:     srv.URL,
		PassportBaseURL: srv.URL,
		Cookies:         NewCookieStore(filepath.Join(t.TempDir(), "webapi.cookie")),
	})
	return c, srv
}

func TestRoomInit_ResolvesAndCaches(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/room/v1/Room/room_init", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "6", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"code":0,"message":"ok","data":{"room_id":7734200,"short_id":6,"uid":50329118,"live_status":1}}`)
	})
	c, _ := newTestClient(t, mux)

	info, err := c.RoomInit(context.Background(), 6)
	require.NoError(t, err)
	require.Equal(t, uint64(7734200), info.RoomID)
	require.True(t, info.Live())

	_, err = c.RoomInit(context.Background(), 6)
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestRoomInit_APIErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"code":60004,"message":"房间不存在","data":null}`)
	}))

	_, err := c.RoomInit(context.Background(), 999)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 60004, apiErr.Code)
	require.Equal(t, int32(1), calls.Load())
}

func TestRoomInit_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"code":0,"data":{"room_id":1}}`)
	}))

	info, err := c.RoomInit(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), info.RoomID)
	require.Equal(t, int32(3), calls.Load())
}

func TestDanmuInfo(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/xlive/web-room/v1/index/getDanmuInfo", r.URL.Path)
		fmt.Fprint(w, `{"code":0,"data":{"token":"tok","host_list":[{"host":"broadcastlv.chat.bilibili.com","port":2243,"wss_port":443,"ws_port":2244}]}}`)
	}))

	info, err := c.DanmuInfo(context.Background(), 7734200)
	require.NoError(t, err)
	require.Equal(t, "tok", info.Token)
	require.Len(t, info.HostList, 1)
	require.Equal(t, 2243, info.HostList[0].Port)
}

func TestDanmuInfo_EmptyHostList(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"data":{"token":"tok","host_list":[]}}`)
	}))

	_, err := c.DanmuInfo(context.Background(), 1)
	require.ErrorContains(t, err, "empty host list")
}

func TestSendDanmaku_RequiresLogin(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())
	err := c.SendDanmaku(context.Background(), 1, "hi")
	require.True(t, errors.Is(err, ErrNotLoggedIn))
}

func TestSendDanmaku_PostsForm(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/msg/send", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "hello", r.PostForm.Get("msg"))
		require.Equal(t, "21452505", r.PostForm.Get("roomid"))
		require.Equal(t, "csrf", r.PostForm.Get("csrf"))
		require.Contains(t, r.Header.Get("Cookie"), "SESSDATA=sess")
		fmt.Fprint(w, `{"code":0,"data":[],"message":"","msg":""}`)
	}))
	c.Cookies().Set(map[string]string{CookieSession: "sess", CookieCSRF: "csrf"})

	require.NoError(t, c.SendDanmaku(context.Background(), 21452505, "hello"))
}

func TestQRLogin_GenerateAndPoll(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/x/passport-login/web/qrcode/generate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"data":{"url":"https://passport.bilibili.com/h5-app/passport/login/scan?qrcode_key=k1","qrcode_key":"k1"}}`)
	})
	mux.HandleFunc("/x/passport-login/web/qrcode/poll", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "k1", r.URL.Query().Get("qrcode_key"))
		if polls.Add(1) == 1 {
			fmt.Fprint(w, `{"code":0,"data":{"code":86101,"message":"未扫码","url":""}}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: CookieSession, Value: "sess"})
		http.SetCookie(w, &http.Cookie{Name: CookieCSRF, Value: "csrf"})
		redirect := "https://passport.biligame.com/crossDomain?" + url.Values{CookieUserID: {"99"}}.Encode()
		fmt.Fprintf(w, `{"code":0,"data":{"code":0,"message":"","url":%q,"refresh_token":"r"}}`, redirect)
	})
	c, _ := newTestClient(t, mux)
	ctx := context.Background()

	qr, err := c.GenerateQRCode(ctx)
	require.NoError(t, err)
	require.Equal(t, "k1", qr.Key)

	res, err := c.PollQRCode(ctx, qr.Key)
	require.NoError(t, err)
	require.Equal(t, PollNotScanned, res.Code)
	require.False(t, c.Cookies().Account().LoggedIn)

	res, err = c.PollQRCode(ctx, qr.Key)
	require.NoError(t, err)
	require.Equal(t, PollSuccess, res.Code)
	require.Equal(t, Account{UID: "99", LoggedIn: true}, c.Cookies().Account())

	reloaded := NewCookieStore(c.Cookies().Path())
	require.NoError(t, reloaded.Load())
	require.Equal(t, "csrf", reloaded.Get(CookieCSRF))
}

func TestDo_BadStatusAndBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/x/passport-login/web/qrcode/generate", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.GenerateQRCode(context.Background())
	require.ErrorContains(t, err, "decoding response")

	_, err = c.PollQRCode(context.Background(), "x")
	require.ErrorContains(t, err, "unexpected status")
}
