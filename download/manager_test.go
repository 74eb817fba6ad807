package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ttm-go/tweetmd/tweet"
	"github.com/ttm-go/tweetmd/vault"
)

func okTask(dest string, counter *int32) Task {
	return Task{
		Dest: dest,
		Run: func(ctx context.Context) (int64, error) {
			atomic.AddInt32(counter, 1)
			return 10, nil
		},
	}
}

func TestManagerNotifyOnce(t *testing.T) {
	assert := assert.New(t)

	var notified, runs int32
	m := NewManager(context.Background(), func() { atomic.AddInt32(&notified, 1) })

	assert.NoError(m.Register())
	assert.Equal(int32(0), atomic.LoadInt32(&notified))

	assert.NoError(m.Register(okTask("a.jpg", &runs), okTask("b.jpg", &runs)))
	assert.NoError(m.Register(okTask("c.jpg", &runs)))
	assert.Equal(int32(1), atomic.LoadInt32(&notified))

	results, err := m.Finalize()
	assert.NoError(err)
	assert.Len(results, 3)
	assert.Equal("a.jpg", results[0].Dest)
	assert.Equal(int64(10), results[2].Bytes)
	assert.Equal(int32(3), atomic.LoadInt32(&runs))
}

func TestManagerDedupe(t *testing.T) {
	assert := assert.New(t)

	var runs int32
	m := NewManager(context.Background(), nil)
	assert.NoError(m.Register(okTask("avatar.jpg", &runs), okTask("avatar.jpg", &runs)))
	assert.NoError(m.Register(okTask("avatar.jpg", &runs)))

	results, err := m.Finalize()
	assert.NoError(err)
	assert.Len(results, 1)
	assert.Equal(int32(1), atomic.LoadInt32(&runs))
}

func TestManagerFailure(t *testing.T) {
	assert := assert.New(t)

	var runs int32
	m := NewManager(context.Background(), nil)
	assert.NoError(m.Register(
		okTask("good.jpg", &runs),
		Task{Dest: "bad.jpg", Run: func(ctx context.Context) (int64, error) {
			return 0, fmt.Errorf("boom")
		}},
	))

	results, err := m.Finalize()
	assert.Error(err)
	assert.True(errors.Is(err, tweet.ErrAssetDownload))
	assert.Contains(err.Error(), "bad.jpg")
	assert.Len(results, 2)
	assert.NoError(results[0].Err)
	assert.Error(results[1].Err)
}

func TestManagerFinalizeOnce(t *testing.T) {
	assert := assert.New(t)

	var runs int32
	m := NewManager(context.Background(), nil)
	_, err := m.Finalize()
	assert.NoError(err)

	_, err = m.Finalize()
	assert.True(errors.Is(err, ErrFinalized))
	assert.True(errors.Is(m.Register(okTask("late.jpg", &runs)), ErrFinalized))
	assert.Equal(int32(0), atomic.LoadInt32(&runs))
}

func TestFetch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(404)
			return
		}
		w.Write([]byte("jpegbytes"))
	}))
	defer srv.Close()

	v := vault.NewMem()
	assert.NoError(v.CreateFolder(ctx, "assets"))
	assert.NoError(v.CreateBinaryFile(ctx, "assets/old.jpg", []byte("old")))

	m := NewManager(ctx, nil)
	assert.NoError(m.Register(
		Fetch(srv.Client(), v, srv.URL+"/new.jpg", "assets/new.jpg"),
		Fetch(srv.Client(), v, srv.URL+"/old.jpg", "assets/old.jpg"),
	))
	results, err := m.Finalize()
	assert.NoError(err)
	assert.Equal(int64(9), results[0].Bytes)
	assert.Equal([]byte("jpegbytes"), v.Bytes("assets/new.jpg"))
	assert.Equal([]byte("old"), v.Bytes("assets/old.jpg"))

	m = NewManager(ctx, nil)
	assert.NoError(m.Register(Fetch(srv.Client(), v, srv.URL+"/missing.jpg", "assets/missing.jpg")))
	_, err = m.Finalize()
	assert.True(errors.Is(err, tweet.ErrAssetDownload))
	ok, _ := v.Exists(ctx, "assets/missing.jpg")
	assert.False(ok)
}
