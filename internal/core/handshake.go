package core

import "strconv"

// Handshake header keys. Exact names are part of the wire contract.
const (
	HeaderName   = "name"
	HeaderUserID = "userId"
	HeaderRoomID = "chatRoomId"
)

// Client-facing rejection frame texts. These exact strings are observable
// contract; clients match on them.
const (
	RejectMissingHeaders = "Error: Missing required headers."
	RejectInternalError  = "Error: Unexpected server error."

	rejectInvalidUserID = "Error: Invalid userId format: "
	rejectInvalidRoomID = "Error: Invalid chatroomId format: "
)

// Handshake holds the parsed connection metadata.
type Handshake struct {
	Name   string
	UserID int64
	RoomID int64
}

// Rejection describes a refused handshake. Reason is the exact text frame to
// send to the client before closing. A rejection is a client error, not a
// server fault.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// ParseHandshake validates connection metadata and produces either a parsed
// identity or a rejection. header returns the value for a metadata key, empty
// if absent. Parsing never touches the registry; the transport layer performs
// the rejection side effects.
func ParseHandshake(header func(string) string) (Handshake, *Rejection) {
	name := header(HeaderName)
	rawUserID := header(HeaderUserID)
	rawRoomID := header(HeaderRoomID)

	if name == "" || rawUserID == "" || rawRoomID == "" {
		return Handshake{}, &Rejection{Reason: RejectMissingHeaders}
	}

	userID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil {
		return Handshake{}, &Rejection{Reason: rejectInvalidUserID + rawUserID}
	}

	roomID, err := strconv.ParseInt(rawRoomID, 10, 64)
	if err != nil {
		return Handshake{}, &Rejection{Reason: rejectInvalidRoomID + rawRoomID}
	}

	return Handshake{Name: name, UserID: userID, RoomID: roomID}, nil
}
