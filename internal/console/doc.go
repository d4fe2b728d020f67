// Package console runs the admin query console against the database proxy.
//
// # Wire contract
//
// The browser sends raw query text; the portal forwards each text frame to
// the proxy unchanged. The proxy answers with one JSON text frame per result.
// Decode turns a frame into exactly one of:
//
//   - Rows: the frame is a JSON array. Columns are the first record's keys in
//     document order, and every record is read against those columns.
//   - Status: any other JSON value. The message is the "data" field when it is
//     truthy, otherwise "unknown response".
//
// A frame that is not text or not valid JSON is a hard failure. The Bridge
// stops and closes the browser socket with code 1003.
//
// # Bridge
//
// A Bridge owns one browser socket and one proxy Conn:
//
//	conn, err := console.Dial(ctx, proxyURL, token, id)
//	bridge := console.NewBridge(browserSocket, conn, render)
//	err = bridge.Run(ctx)
//
// Two pumps run under an errgroup. When either side closes, or ctx ends, both
// sockets are closed. There is no reconnect.
package console
