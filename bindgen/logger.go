package bindgen

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("bindgen")
