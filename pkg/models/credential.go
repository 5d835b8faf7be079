package models

// Credential level codes as published in the program dataset. Code 4
// (post-baccalaureate certificate) is not accepted by the engine.
const (
	CredentialCertificate = 1
	CredentialAssociate   = 2
	CredentialBachelor    = 3
	CredentialMaster      = 5
	CredentialDoctorate   = 6
)

// credentialDurations fixes program duration in years per credential level.
// Duration governs both the debt accrual period and the cumulative-earnings
// horizon; it is never derived from anything else.
var credentialDurations = map[int]int{
	CredentialCertificate: 1,
	CredentialAssociate:   2,
	CredentialBachelor:    4,
	CredentialMaster:      2,
	CredentialDoctorate:   5,
}

var credentialNames = map[int]string{
	CredentialCertificate: "Certificate",
	CredentialAssociate:   "Associate",
	CredentialBachelor:    "Bachelor's",
	CredentialMaster:      "Master's",
	CredentialDoctorate:   "Doctorate",
}

// CredentialDuration returns the program duration in years for a credential
// level, or false for codes the engine does not accept.
func CredentialDuration(level int) (int, bool) {
	d, ok := credentialDurations[level]
	return d, ok
}

// CredentialName returns the display name for a credential level code.
func CredentialName(level int) string {
	if name, ok := credentialNames[level]; ok {
		return name
	}
	return "Unknown"
}
