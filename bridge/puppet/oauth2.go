package puppet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	bridgemanager "github.com/devgianlu/go-bridgemanager"
)

var ErrAuthorizationDenied = errors.New("authorization denied")

type callbackResult struct {
	code string
	err  error
}

// newCallbackServer listens on the loopback interface for the OAuth2 redirect. The first request
// carrying the expected state is delivered on the returned channel. The server stops when ctx is done.
func newCallbackServer(ctx context.Context, log bridgemanager.Logger, callbackPort int, state string) (int, <-chan callbackResult, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", callbackPort))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to listen: %w", err)
	}

	resCh := make(chan callbackResult, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(rw, "invalid state", http.StatusBadRequest)
			return
		}

		var res callbackResult
		if errParam := query.Get("error"); len(errParam) > 0 {
			res.err = fmt.Errorf("%w: %s", ErrAuthorizationDenied, errParam)
		} else if res.code = query.Get("code"); len(res.code) == 0 {
			http.Error(rw, "missing code", http.StatusBadRequest)
			return
		}

		select {
		case resCh <- res:
			_, _ = rw.Write([]byte("Go back to go-bridgemanager!"))
		default:
			http.Error(rw, "authorization already completed", http.StatusConflict)
		}
	})}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = srv.Close()
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Errorf("failed serving oauth2 callback")
			}
		}
	}()

	return lis.Addr().(*net.TCPAddr).Port, resCh, nil
}
