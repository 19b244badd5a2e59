package migrate

import "github.com/byteness/pasmigrate/object"

// Target template lookup tables. Local accounts key on the host's computer
// class, database accounts on the database engine; unmapped combinations
// leave the template name empty and the record is still produced.
var localTemplates = map[string]string{
	"Unix":    "Unix Account (SSH)",
	"Windows": "Windows Account",
	"Network": "Network Device Account",
}

var databaseTemplates = map[string]string{
	"SQLServer": "SQL Server Account",
	"Oracle":    "Oracle Account",
	"MySQL":     "MySQL Account",
}

// Subtype-level templates that need no secondary class.
var (
	domainTemplate = "Active Directory Account"
	cloudTemplate  = "Cloud Console Account"
)

// templateFor resolves the target template name for an account subtype and
// its class qualifier (host computer class or database engine). Overrides
// are consulted first, keyed "<subtype>" or "<subtype>/<class>".
func templateFor(acctype object.AccountType, class string, overrides map[string]string) string {
	if overrides != nil {
		if t, ok := overrides[string(acctype)+"/"+class]; ok {
			return t
		}
		if t, ok := overrides[string(acctype)]; ok {
			return t
		}
	}

	switch acctype {
	case object.AccountLocal:
		return localTemplates[class]
	case object.AccountDatabase:
		return databaseTemplates[class]
	case object.AccountDomain:
		return domainTemplate
	case object.AccountCloud:
		return cloudTemplate
	}
	return ""
}
