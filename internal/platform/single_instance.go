package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"
	"time"
)

// ErrAlreadyRunning indicates another ZenFlow process owns the state directory.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	activateRequest  = "show"
	activateAck      = "ok"
	activateDeadline = time.Second
)

// InstanceGuard is held by the one process allowed to write a focus state
// directory. A window holding it can also be raised by later launches.
type InstanceGuard struct {
	listener net.Listener
	address  string
}

// AcquireSingleInstance claims name by binding a localhost port derived from it.
func AcquireSingleInstance(name string) (*InstanceGuard, error) {
	address := instanceAddress(name)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return &InstanceGuard{listener: listener, address: address}, nil
}

// ServeActivation answers activation requests until the guard is released,
// calling onActivate once per request. It returns immediately.
func (guard *InstanceGuard) ServeActivation(onActivate func()) {
	if guard == nil || guard.listener == nil {
		return
	}
	go func() {
		for {
			conn, err := guard.listener.Accept()
			if err != nil {
				return
			}
			go handleActivation(conn, onActivate)
		}
	}()
}

func handleActivation(conn net.Conn, onActivate func()) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(activateDeadline))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil || strings.TrimSpace(line) != activateRequest {
		return
	}
	if onActivate != nil {
		onActivate()
	}
	_, _ = fmt.Fprintln(conn, activateAck)
}

// Activate asks the process holding name to bring its window forward. It
// fails when nothing holds name or the holder does not answer, as a
// command-line writer does not.
func Activate(name string) error {
	conn, err := net.DialTimeout("tcp", instanceAddress(name), activateDeadline)
	if err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(activateDeadline))

	if _, err := fmt.Fprintln(conn, activateRequest); err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	if strings.TrimSpace(reply) != activateAck {
		return fmt.Errorf("activate: unexpected reply %q", reply)
	}
	return nil
}

// Release frees the guard and stops answering activation requests.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

// instanceAddress maps name onto a port in 20000-39999.
func instanceAddress(name string) string {
	const (
		firstPort = 20000
		portCount = 20000
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(name))
	return fmt.Sprintf("127.0.0.1:%d", firstPort+int(hash.Sum32()%portCount))
}
