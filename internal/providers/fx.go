package providers

import (
	"github.com/smallbiznis/sairex/internal/providers/pdf"
	"github.com/smallbiznis/sairex/internal/providers/sms"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	sms.Module,
	pdf.Module,
)
