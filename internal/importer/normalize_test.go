package importer

import (
	"testing"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalHeader(t *testing.T) {
	tests := map[string]string{
		"Codi":            "code",
		" First Name ":    "first_name",
		"Codi Professor":  "teacher_code",
		"Hora d'inici":    "hora_d_inici",
		"Llicència":       "license_type",
		"max-hours":       "max_hours",
		"Start_Time":      "start_time",
		"Pla d'estudis":   "program_code",
		"Correu-e":        "email",
		"Operating Syst.": "operating_syst",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalHeader(in), in)
	}
}

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "Grafic i Disseny", FoldAccents("Gràfic i Disseny"))
	assert.Equal(t, "Teorica", FoldAccents("Teòrica"))
	assert.Equal(t, "Nunez", FoldAccents("Núñez"))
}

func TestClassroomCodes(t *testing.T) {
	assert.Equal(t, []string{"P.1.3", "P.1.4", "G.0.2"}, ClassroomCodes("P.1.3 (aula), P.1.4 / G.0.2"))
	assert.Equal(t, []string{"L.0.1"}, ClassroomCodes("L.0.1 (5 darreres sessions); L.0.1"))
	assert.Empty(t, ClassroomCodes("  "))
}

func TestCodeVariants(t *testing.T) {
	assert.Equal(t, []string{"p.1.3", "P.1.3", "p13", "P13"}, CodeVariants(" p.1.3 "))
	assert.Equal(t, []string{"G01"}, CodeVariants("G01"))
}

func TestFloorFromCode(t *testing.T) {
	n, ok := FloorFromCode("G.0.1")
	require.True(t, ok)
	assert.Equal(t, 0, n)

	n, ok = FloorFromCode("L.2.12")
	require.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = FloorFromCode("TALLER")
	assert.False(t, ok)
}

func TestInferShift(t *testing.T) {
	tests := map[string]model.Shift{
		"GR1-M1":           model.ShiftMorning,
		"GR1-T2":           model.ShiftAfternoon,
		"GR3-Gt":           model.ShiftAfternoon,
		"GR3-Gm2":          model.ShiftMorning,
		"GR3-At":           model.ShiftAfternoon,
		"1r Disseny Tarda": model.ShiftAfternoon,
		"Grup matí":        model.ShiftMorning,
		"MUDI":             model.ShiftMorning,
	}
	for name, want := range tests {
		assert.Equal(t, want, InferShift(name), name)
	}
}

func TestYearFromGroupName(t *testing.T) {
	n, ok := YearFromGroupName("GR2-M1")
	require.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = YearFromGroupName("MUDI")
	assert.False(t, ok)
}

func TestSplitTeacherName(t *testing.T) {
	first, last := SplitTeacherName("Puig Soler, Anna Maria")
	assert.Equal(t, "Anna Maria", first)
	assert.Equal(t, "Puig Soler", last)

	first, last = SplitTeacherName("Jordi  Vidal Roca")
	assert.Equal(t, "Jordi", first)
	assert.Equal(t, "Vidal Roca", last)

	first, last = SplitTeacherName("Mercè")
	assert.Equal(t, "Mercè", first)
	assert.Equal(t, "", last)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "Sí", "TRUE", "x"} {
		v, err := ParseBool(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	v, err := ParseBool("no")
	require.NoError(t, err)
	assert.False(t, v)

	_, err = ParseBool("potser")
	assert.Error(t, err)
}

func TestParseNumbers(t *testing.T) {
	f, err := ParseFloat("4,5")
	require.NoError(t, err)
	assert.Equal(t, 4.5, f)

	n, err := ParseInt("30.0")
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	_, err = ParseInt("2,5")
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"windows", "macos"}, SplitList("windows, macos"))
	assert.Equal(t, []string{"M1", "T1"}, SplitList("M1;T1;"))
}
