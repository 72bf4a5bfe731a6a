package utils

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/c2xstation/storefront/log"
)

var (
	// CleanupChan is closed when the process starts exiting
	CleanupChan = make(chan struct{})
	// TopWaitGroup counts the long running routines that must finish before exit
	TopWaitGroup = new(sync.WaitGroup)

	cleanupOnce  sync.Once
	isCleanuping bool
	cleanupLock  sync.RWMutex
)

func init() {
	go catchSignal()
}

// IsCleanuping is cleanuping
func IsCleanuping() bool {
	cleanupLock.RLock()
	defer cleanupLock.RUnlock()
	return isCleanuping
}

// TriggerCleanup closes CleanupChan once
func TriggerCleanup() {
	cleanupOnce.Do(func() {
		cleanupLock.Lock()
		isCleanuping = true
		cleanupLock.Unlock()
		close(CleanupChan)
	})
}

// WaitAndCleanup wait and cleanup
func WaitAndCleanup(doCleanup func()) {
	<-CleanupChan
	doCleanup()
}

func catchSignal() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChan
	log.Info("receive signal, start cleanup", "signal", sig)
	TriggerCleanup()
}
