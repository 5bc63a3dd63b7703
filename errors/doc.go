// Package errors defines the error taxonomy of the REST client.
//
// Every failure surfaced by the client is an *AppError carrying a
// machine-readable ErrorCode, so callers can tell a transport failure from a
// response that could not be decoded:
//
//	todo, err := restclient.Entity[Todo](resp)
//	switch {
//	case errors.IsUnknownContentType(err):
//	    // response had no usable Content-Type
//	case errors.IsDeserialization(err):
//	    // body did not match Todo
//	}
package errors
