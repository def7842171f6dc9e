package cache

import (
	"bufio"
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func pipeConn(t *testing.T) (*respConn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return &respConn{
		conn:         client,
		reader:       bufio.NewReader(client),
		writer:       bufio.NewWriter(client),
		readTimeout:  time.Second,
		writeTimeout: time.Second,
	}, server
}

func TestRespRoundTrip(t *testing.T) {
	conn, server := pipeConn(t)

	go func() {
		buf := make([]byte, 256)
		n, _ := server.Read(buf)
		want := "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"
		if string(buf[:n]) != want {
			server.Write([]byte("-unexpected command\r\n"))
			return
		}
		server.Write([]byte("$3\r\nbar\r\n"))
	}()

	reply, err := conn.roundTrip("GET", "foo")
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if reply.nil || string(reply.data) != "bar" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestRespNilBulkReply(t *testing.T) {
	conn, server := pipeConn(t)

	go func() {
		buf := make([]byte, 256)
		server.Read(buf)
		server.Write([]byte("$-1\r\n"))
	}()

	reply, err := conn.roundTrip("GET", "gone")
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reply.nil {
		t.Fatalf("expected a nil reply, got %+v", reply)
	}
}

func TestRespErrorReply(t *testing.T) {
	conn, server := pipeConn(t)

	go func() {
		buf := make([]byte, 256)
		server.Read(buf)
		server.Write([]byte("-ERR wrong number of arguments\r\n"))
	}()

	if _, err := conn.roundTrip("SET", "k"); err == nil {
		t.Fatalf("expected server error to surface")
	}
}

func TestNoopProvider(t *testing.T) {
	var p Provider = NoopProvider{}
	ctx := context.Background()

	if err := p.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := p.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
}
