package notify

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/denizcargo/opswatch/internal/domain"
)

// Casers for humanizing status keys in user-facing text. Turkish gets its
// own caser for correct dotted/dotless i handling.
var (
	titleEN = cases.Title(language.English)
	titleTR = cases.Title(language.Turkish)
)

// humanizeEN turns a status key like "booking_confirmed" into
// "Booking Confirmed".
func humanizeEN(key string) string {
	return titleEN.String(strings.ReplaceAll(key, "_", " "))
}

// humanizeTR title-cases a key with Turkish casing rules.
func humanizeTR(key string) string {
	return titleTR.String(strings.ReplaceAll(key, "_", " "))
}

// bi builds a Bilingual from preformatted EN and TR strings.
func bi(en, tr string) domain.Bilingual {
	return domain.Bilingual{EN: en, TR: tr}
}

// bif builds a Bilingual from two format strings sharing one argument
// list. Both renderings must consume the same arguments in the same
// order.
func bif(enFormat, trFormat string, args ...any) domain.Bilingual {
	return domain.Bilingual{
		EN: fmt.Sprintf(enFormat, args...),
		TR: fmt.Sprintf(trFormat, args...),
	}
}

// urgent prefixes a bilingual title with the urgency marker used for
// error-tier notifications.
func urgent(title domain.Bilingual) domain.Bilingual {
	return domain.Bilingual{
		EN: "URGENT: " + title.EN,
		TR: "ACİL: " + title.TR,
	}
}
