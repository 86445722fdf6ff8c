package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) { // begin getUserID helper
	v := c.Get("user_id") // fetch user_id from context
	switch t := v.(type) { // perform type switch on the value
	case uint64: // when already uint64
		return t, nil // return directly
	case int: // when stored as int
		return uint64(t), nil // convert to uint64
	case int64: // when stored as int64
		return uint64(t), nil // convert to uint64
	case float64: // when stored as float64
		return uint64(t), nil // convert to uint64
	case string: // when stored as string
		if n, err := strconv.ParseUint(t, 10, 64); err == nil { // parse string to uint64
			return n, nil // return parsed number
		}
	} // end type switch
	return 0, errors.New("invalid user_id in context") // return error if value is missing or invalid
}

// pathID parses a numeric :id-style path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
