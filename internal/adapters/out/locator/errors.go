package locator

import "errors"

var errProviderDisabled = errors.New("geolocation provider is not configured")
