package domain

import "errors"

var ErrNotConfirmed = errors.New("payment_not_confirmed")
