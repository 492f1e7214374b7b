package adminsock

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
)

// Client is a connection to a Server's Unix domain socket.
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
	enc     *json.Encoder
}

// Dial connects to the admin socket at path.
func Dial(path string) (*Client, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, err
	}

	return &Client{
		conn:    conn,
		scanner: bufio.NewScanner(conn),
		enc:     json.NewEncoder(conn),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Query sends a Request naming action and args, and waits for the
// matching Response line.
func (c *Client) Query(action string, args map[string]string) (*Response, error) {
	if err := c.enc.Encode(Request{Action: action, Args: args}); err != nil {
		return nil, err
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("adminsock: connection closed without a response")
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return nil, err
	}

	if !resp.OK {
		return &resp, fmt.Errorf("adminsock: %s", resp.Error)
	}

	return &resp, nil
}

// Ping checks that the server is alive.
func (c *Client) Ping() error {
	_, err := c.Query(ActionPing, nil)
	return err
}
