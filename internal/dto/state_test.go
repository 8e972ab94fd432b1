package dto

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tum-registrar/internal/models"
)

func sampleUniversity() *models.University {
	u := models.NewUniversity()
	enrolled := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	se := u.CreateFaculty("Software Engineering", "SE", models.SoftwareEngineering)
	ana := models.NewStudent("Ana", "Pop", "ana@example.com", enrolled, civil.Date{Year: 2001, Month: time.May, Day: 1})
	ion := models.NewStudent("Ion", "Rusu", "ion@example.com", enrolled, civil.Date{Year: 2000, Month: time.January, Day: 12})
	se.Enroll(ana)
	se.Enroll(ion)
	se.Graduate(ion, enrolled.AddDate(0, 1, 0))
	u.CreateFaculty("Veterinary Medicine", "VM", models.VeterinaryMedicine)
	return u
}

func TestStateDocumentRoundTrip(t *testing.T) {
	doc := NewStateDocument(sampleUniversity(), false)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded StateDocument
	require.NoError(t, json.Unmarshal(raw, &decoded))
	if diff := cmp.Diff(doc, &decoded); diff != "" {
		t.Fatalf("document changed across encoding (-want +got):\n%s", diff)
	}

	u, defaulted := decoded.University()
	assert.Empty(t, defaulted)
	faculties := u.Faculties()
	require.Len(t, faculties, 2)
	assert.Equal(t, models.SoftwareEngineering, faculties[0].StudyField())
	assert.Equal(t, models.VeterinaryMedicine, faculties[1].StudyField())
	require.Len(t, faculties[0].Students(), 1)
	assert.Equal(t, "ana@example.com", faculties[0].Students()[0].Email)
	require.Len(t, faculties[0].Graduates(), 1)
	assert.Equal(t, civil.Date{Year: 2026, Month: time.November, Day: 19}, faculties[0].Graduates()[0].GraduatedOn)
}

func TestLegacyDocumentShape(t *testing.T) {
	raw, err := json.Marshal(NewStateDocument(sampleUniversity(), true))
	require.NoError(t, err)

	assert.JSONEq(t, `{"faculties":[
		{"name":"Software Engineering","abbreviation":"SE","students":[
			{"first_name":"Ana","last_name":"Pop","email":"ana@example.com","enrollment_date":"2026-10-19","date_of_birth":"2001-05-01"}]},
		{"name":"Veterinary Medicine","abbreviation":"VM","students":[]}]}`, string(raw))
}

func TestLegacyDocumentDefaultsStudyField(t *testing.T) {
	var doc StateDocument
	require.NoError(t, json.Unmarshal([]byte(`{"faculties":[{"name":"Veterinary Medicine","abbreviation":"VM","students":[]}]}`), &doc))

	assert.Equal(t, StateVersionLegacy, doc.EffectiveVersion())
	u, defaulted := doc.University()
	assert.Equal(t, []string{"Veterinary Medicine"}, defaulted)
	assert.Equal(t, models.MechanicalEngineering, u.Faculties()[0].StudyField())
}

func TestInvalidDateFailsDecoding(t *testing.T) {
	var doc StateDocument
	err := json.Unmarshal([]byte(`{"faculties":[{"name":"X","abbreviation":"X","students":[{"email":"a","enrollment_date":"19/10/2026","date_of_birth":"2001-05-01"}]}]}`), &doc)
	assert.Error(t, err)
}

func TestNilDocumentYieldsEmptyUniversity(t *testing.T) {
	var doc *StateDocument
	u, defaulted := doc.University()
	assert.Empty(t, u.Faculties())
	assert.Nil(t, defaulted)
}
