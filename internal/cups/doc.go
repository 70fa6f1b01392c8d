// Package cups talks to the CUPS scheduler over HTTP.
//
// Only the two resources the troubleshooter needs are fetched: the PPD of a
// queue (/printers/<queue>.ppd) and the queue resource itself, used to learn
// whether a queue exists. The scheduler may be addressed by host[:port] or by
// the path of its local domain socket.
package cups
