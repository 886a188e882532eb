package config

// DefaultSymptomDiagnosisMap is the built-in seed content-alignment table
// (§4.1): a CBS symptom maps to one or more EMR diagnoses it is considered
// to corroborate.
func DefaultSymptomDiagnosisMap() map[string][]string {
	return map[string][]string{
		"fever":        {"Malaria", "Typhoid", "Dengue"},
		"watery_stool": {"Cholera", "Acute Diarrhea"},
		"cough":        {"Tuberculosis", "Pneumonia", "Influenza"},
		"rash":         {"Measles", "Chickenpox"},
		"jaundice":     {"Hepatitis A", "Hepatitis B", "Yellow Fever"},
		"bleeding":     {"Ebola Virus Disease", "Dengue Hemorrhagic Fever"},
		"unknown":      {},
	}
}
