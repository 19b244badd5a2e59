// Package permissions decodes bitmask-encoded access grants into named
// permission flags. Each object-type family has its own fixed flag table;
// decoding is deterministic with flags emitted in lexical order, a property
// the migration mapper relies on when classifying grant strings.
package permissions

// ObjectType identifies the kind of tenant object a grant applies to.
// Several aliases name the same underlying table; Family groups them.
type ObjectType string

const (
	// ObjectTypeSecret is a vaulted text or file secret.
	ObjectTypeSecret ObjectType = "Secret"
	// ObjectTypeDataVault is the table alias for secrets.
	ObjectTypeDataVault ObjectType = "DataVault"
	// ObjectTypeSet is a generic collection object.
	ObjectTypeSet ObjectType = "Set"
	// ObjectTypeCollection is the table alias for sets.
	ObjectTypeCollection ObjectType = "Collection"
	// ObjectTypeManualBucket is a manually curated set.
	ObjectTypeManualBucket ObjectType = "ManualBucket"
	// ObjectTypeSqlDynamic is a server-computed dynamic set.
	ObjectTypeSqlDynamic ObjectType = "SqlDynamic"
	// ObjectTypePhantom is a folder masquerading as a set.
	ObjectTypePhantom ObjectType = "Phantom"
	// ObjectTypeFolder is the display alias for phantom sets.
	ObjectTypeFolder ObjectType = "Folder"
	// ObjectTypeServer is an enrolled system.
	ObjectTypeServer ObjectType = "Server"
	// ObjectTypeSystem is the display alias for servers.
	ObjectTypeSystem ObjectType = "System"
	// ObjectTypeAccount is a vaulted account.
	ObjectTypeAccount ObjectType = "Account"
	// ObjectTypeVaultAccount is the table alias for accounts.
	ObjectTypeVaultAccount ObjectType = "VaultAccount"
	// ObjectTypeLocal is a local account on a system.
	ObjectTypeLocal ObjectType = "Local"
	// ObjectTypeDomain is a directory-domain account.
	ObjectTypeDomain ObjectType = "Domain"
	// ObjectTypeCloud is a cloud-provider account.
	ObjectTypeCloud ObjectType = "Cloud"
	// ObjectTypeDatabase is a database account container.
	ObjectTypeDatabase ObjectType = "Database"
	// ObjectTypeVaultDatabase is the table alias for databases.
	ObjectTypeVaultDatabase ObjectType = "VaultDatabase"
)

// Family is the equivalence class of object types sharing one flag table.
// The original tooling matched these with regular expressions
// ("Secret|DataVault", "ManualBucket|SqlDynamic"); here the classes are
// enumerated explicitly.
type Family string

const (
	// FamilySecret covers vaulted secrets.
	FamilySecret Family = "secret"
	// FamilySet covers manual and dynamic collections.
	FamilySet Family = "set"
	// FamilyFolder covers phantom (folder) collections.
	FamilyFolder Family = "folder"
	// FamilyServer covers enrolled systems.
	FamilyServer Family = "server"
	// FamilyAccount covers vaulted accounts of every subtype.
	FamilyAccount Family = "account"
	// FamilyDatabase covers database objects.
	FamilyDatabase Family = "database"
	// FamilyUnknown is returned for unmapped object types.
	FamilyUnknown Family = ""
)

// familyOf maps every known object type to its flag-table family.
var familyOf = map[ObjectType]Family{
	ObjectTypeSecret:        FamilySecret,
	ObjectTypeDataVault:     FamilySecret,
	ObjectTypeSet:           FamilySet,
	ObjectTypeCollection:    FamilySet,
	ObjectTypeManualBucket:  FamilySet,
	ObjectTypeSqlDynamic:    FamilySet,
	ObjectTypePhantom:       FamilyFolder,
	ObjectTypeFolder:        FamilyFolder,
	ObjectTypeServer:        FamilyServer,
	ObjectTypeSystem:        FamilyServer,
	ObjectTypeAccount:       FamilyAccount,
	ObjectTypeVaultAccount:  FamilyAccount,
	ObjectTypeLocal:         FamilyAccount,
	ObjectTypeDomain:        FamilyAccount,
	ObjectTypeCloud:         FamilyAccount,
	ObjectTypeDatabase:      FamilyDatabase,
	ObjectTypeVaultDatabase: FamilyDatabase,
}

// FamilyOf returns the flag-table family for an object type.
// Unknown object types map to FamilyUnknown.
func FamilyOf(t ObjectType) Family {
	return familyOf[t]
}

// KnownObjectType returns true if the object type has a flag table.
func KnownObjectType(t ObjectType) bool {
	_, ok := familyOf[t]
	return ok
}

// String returns the string representation of the ObjectType.
func (t ObjectType) String() string {
	return string(t)
}

// String returns the string representation of the Family.
func (f Family) String() string {
	return string(f)
}
