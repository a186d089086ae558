package redis

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ServerError is an error reply ("-ERR ...") sent by the server.
type ServerError string

func (e ServerError) Error() string { return "redis: " + string(e) }

func encodeCommand(args ...string) []byte {
	var buf bytes.Buffer
	buf.WriteByte('*')
	buf.WriteString(strconv.Itoa(len(args)))
	buf.WriteString("\r\n")
	for _, a := range args {
		buf.WriteByte('$')
		buf.WriteString(strconv.Itoa(len(a)))
		buf.WriteString("\r\n")
		buf.WriteString(a)
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// readReply decodes one RESP2 value: string for simple strings, int64 for
// integers, []byte for bulk strings, []any for arrays and nil for null.
func readReply(r *bufio.Reader) (any, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	line = strings.TrimSuffix(line, "\r\n")
	switch prefix {
	case '+':
		return line, nil
	case '-':
		return nil, ServerError(line)
	case ':':
		return strconv.ParseInt(line, 10, 64)
	case '$':
		n, err := strconv.Atoi(line)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, nil
		}
		data := make([]byte, n+2)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		if data[n] != '\r' || data[n+1] != '\n' {
			return nil, errors.New("redis: malformed bulk terminator")
		}
		return data[:n], nil
	case '*':
		n, err := strconv.Atoi(line)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, nil
		}
		// An error element still leaves the rest of the array on the wire;
		// read it all so the connection can be reused.
		out := make([]any, n)
		var elemErr error
		for i := range out {
			v, err := readReply(r)
			var srvErr ServerError
			switch {
			case errors.As(err, &srvErr):
				if elemErr == nil {
					elemErr = srvErr
				}
			case err != nil:
				return nil, err
			}
			out[i] = v
		}
		if elemErr != nil {
			return nil, elemErr
		}
		return out, nil
	}
	return nil, fmt.Errorf("redis: unsupported reply prefix %q", prefix)
}

func expectStatus(reply any, want string) error {
	if s, ok := reply.(string); ok && strings.EqualFold(s, want) {
		return nil
	}
	return fmt.Errorf("redis: expected %s, got %v", want, reply)
}
