package configsdk

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func TestTokenStore(t *testing.T) {
	t.Parallel()

	newStore := func(leeway time.Duration) (*tokenStore, *clock.Mock) {
		mock := clock.NewMock()
		mock.Set(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
		return newTokenStore(mock, leeway), mock
	}

	t.Run("empty store", func(t *testing.T) {
		s, _ := newStore(0)
		_, ok := s.Current()
		require.False(t, ok)
	})

	t.Run("valid until expiry", func(t *testing.T) {
		s, mock := newStore(0)
		tok := AccessToken{Value: "a", ExpiresAt: mock.Now().Add(time.Minute)}
		s.Set(tok)

		got, ok := s.Current()
		require.True(t, ok)
		require.Equal(t, tok, got)

		mock.Add(time.Minute - time.Millisecond)
		_, ok = s.Current()
		require.True(t, ok)

		mock.Add(time.Millisecond)
		_, ok = s.Current()
		require.False(t, ok, "expired at the exact expiry instant")
	})

	t.Run("leeway", func(t *testing.T) {
		s, mock := newStore(10 * time.Second)
		s.Set(AccessToken{Value: "a", ExpiresAt: mock.Now().Add(time.Minute)})

		mock.Add(49 * time.Second)
		_, ok := s.Current()
		require.True(t, ok)

		mock.Add(time.Second)
		_, ok = s.Current()
		require.False(t, ok)
	})

	t.Run("last write wins", func(t *testing.T) {
		s, mock := newStore(0)
		s.Set(AccessToken{Value: "a", ExpiresAt: mock.Now().Add(time.Hour)})
		s.Set(AccessToken{Value: "b", ExpiresAt: mock.Now().Add(time.Minute)})

		got, ok := s.Current()
		require.True(t, ok)
		require.Equal(t, "b", got.Value)
	})

	t.Run("clear", func(t *testing.T) {
		s, mock := newStore(0)
		s.Set(AccessToken{Value: "a", ExpiresAt: mock.Now().Add(time.Hour)})
		s.Clear()

		_, ok := s.Current()
		require.False(t, ok)
	})

	t.Run("concurrent readers never see a partial token", func(t *testing.T) {
		s, mock := newStore(0)
		exp := mock.Now().Add(time.Hour)
		a := AccessToken{Value: "a", Owner: "a", ExpiresAt: exp}
		b := AccessToken{Value: "b", Owner: "b", ExpiresAt: exp}

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for range 200 {
					if i%2 == 0 {
						s.Set(a)
					} else {
						s.Set(b)
					}
				}
			}()
			go func() {
				defer wg.Done()
				for range 200 {
					if got, ok := s.Current(); ok && got.Value != got.Owner {
						t.Errorf("torn token: value %q owner %q", got.Value, got.Owner)
					}
				}
			}()
		}
		wg.Wait()
	})
}
