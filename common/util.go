package common

import (
	"io"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// InvokeCloser closes closer, logging rather than returning any failure.
func InvokeCloser(closer io.Closer) {
	if closer != nil {
		if err := closer.Close(); err != nil {
			log.Warnf("failed to close %T %v", closer, err)
		}
	}
}

const atFalse = 0
const atTrue = 1

type AtomicBool struct {
	val int32
}

func (a *AtomicBool) Get() bool {
	return atomic.LoadInt32(&a.val) == atTrue
}

func (a *AtomicBool) Set(val bool) {
	atomic.StoreInt32(&a.val, a.toInt(val))
}

func (a *AtomicBool) CompareAndSet(expected bool, val bool) bool {
	return atomic.CompareAndSwapInt32(&a.val, a.toInt(expected), a.toInt(val))
}

func (a *AtomicBool) toInt(val bool) int32 {
	if val {
		return atTrue
	}
	return atFalse
}
