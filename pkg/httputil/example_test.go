package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lzdw/lzdraw/pkg/httputil"
)

func ExampleRetry() {
	attempts := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return httputil.Retryable(errors.New("busy"))
		}
		return nil
	})
	fmt.Println("attempts:", attempts)
	fmt.Println("error:", err)
	// Output:
	// attempts: 3
	// error: <nil>
}
