// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Command httpdump accepts TCP connections and logs every event the
// message parser recognizes from the bytes it reads, one line per
// callback. It does not compose or forward a response -- it is a
// diagnostic tap, not a server.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/katabatic-io/httpparse"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	kind := flag.String("kind", "request", "message kind to expect: request, response or both")
	flag.Parse()

	k, err := parseKind(*kind)
	if err != nil {
		log.Fatalf("httpdump: %v", err)
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("httpdump: listen: %v", err)
	}
	log.Printf("httpdump: listening on %s (kind=%s)", *addr, *kind)

	var closed atomic.Bool
	go acceptLoop(ln, k, &closed)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	closed.Store(true)
	ln.Close()
	log.Println("httpdump: stopped")
}

func parseKind(s string) (httpparse.Kind, error) {
	switch s {
	case "request":
		return httpparse.Request, nil
	case "response":
		return httpparse.Response, nil
	case "both":
		return httpparse.Both, nil
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

func acceptLoop(ln net.Listener, kind httpparse.Kind, closed *atomic.Bool) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if closed.Load() {
				return
			}
			log.Printf("httpdump: accept: %v", err)
			continue
		}
		go handleConn(conn, kind)
	}
}

// handleConn feeds bytes read off conn into a fresh Parser and logs
// every callback, until EOF or a protocol error.
func handleConn(conn net.Conn, kind httpparse.Kind) {
	defer conn.Close()
	remote := conn.RemoteAddr()

	p := httpparse.New(kind)
	settings := newLoggingSettings(remote.String())

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			consumed := p.Execute(settings, buf[:n])
			if st := p.Status(); st == httpparse.StatusError {
				log.Printf("%s: parse error: %s (consumed %d/%d)",
					remote, p.Errno(), consumed, n)
				return
			}
			if p.HasUpgrade() {
				log.Printf("%s: upgraded; %d trailing bytes handed off", remote, n-consumed)
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("%s: read: %v", remote, err)
			}
			p.Execute(settings, nil)
			return
		}
	}
}

// newLoggingSettings builds a Settings whose callbacks print one line per
// event, tagged with the connection's remote address. It also reassembles
// the request-target across however many OnURL deliveries it took and
// decomposes it with ParseURL once the target is complete.
func newLoggingSettings(tag string) *httpparse.Settings {
	var url []byte
	return &httpparse.Settings{
		OnMessageBegin: func(p *httpparse.Parser) int {
			url = url[:0]
			log.Printf("%s: message begin", tag)
			return 0
		},
		OnURL: func(p *httpparse.Parser, data []byte) int {
			url = append(url, data...)
			return 0
		},
		OnHeaderField: func(p *httpparse.Parser, data []byte) int {
			log.Printf("%s: header field %q", tag, data)
			return 0
		},
		OnHeaderValue: func(p *httpparse.Parser, data []byte) int {
			log.Printf("%s: header value %q", tag, data)
			return 0
		},
		OnHeadersComplete: func(p *httpparse.Parser) int {
			log.Printf("%s: headers complete (method=%s version=%d.%d content-length=%d upgrade=%v)",
				tag, p.Method(), p.HTTPMajor(), p.HTTPMinor(), p.ContentLength(), p.HasUpgrade())
			if len(url) > 0 {
				logParsedURL(tag, url, p.Method() == httpparse.MConnect)
			}
			return 0
		},
		OnBody: func(p *httpparse.Parser, data []byte) int {
			log.Printf("%s: body %d bytes", tag, len(data))
			return 0
		},
		OnMessageComplete: func(p *httpparse.Parser) int {
			log.Printf("%s: message complete", tag)
			return 0
		},
		OnReason: func(p *httpparse.Parser, data []byte) int {
			log.Printf("%s: reason %q", tag, data)
			return 0
		},
		OnChunkHeader: func(p *httpparse.Parser) int {
			log.Printf("%s: chunk header (size=%d)", tag, p.ContentLength())
			return 0
		},
		OnChunkComplete: func(p *httpparse.Parser) int {
			log.Printf("%s: chunk complete", tag)
			return 0
		},
	}
}

// logParsedURL decomposes a reassembled request-target with ParseURL and
// logs the fields it finds. A malformed target is logged, not fatal --
// the message itself already parsed fine at the framing level.
func logParsedURL(tag string, raw []byte, isConnect bool) {
	var u httpparse.URL
	if err := httpparse.ParseURL(raw, isConnect, &u); err != httpparse.ErrOk {
		log.Printf("%s: url %q: %s", tag, raw, err)
		return
	}
	log.Printf("%s: url %q -> schema=%q host=%q port=%d path=%q query=%q fragment=%q",
		tag, raw,
		u.Get(httpparse.UFSchema, raw), u.Get(httpparse.UFHost, raw), u.Port,
		u.Get(httpparse.UFPath, raw), u.Get(httpparse.UFQuery, raw), u.Get(httpparse.UFFragment, raw))
}
