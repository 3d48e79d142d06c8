package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gensetgateway/pkg/runtime/constant"
)

func testMap() *RegisterMap {
	m := &RegisterMap{
		Brand:        BrandGenerac,
		MemoryLayout: constant.ABCD,
		Points: []*RegisterPoint{
			{Name: PointEngineStatus, Address: 1, RegisterClass: RegisterHolding, WireType: WireUint16},
			{Name: PointVoltage, Address: 2, RegisterClass: RegisterHolding, WireType: WireUint16, Scale: 0.1},
			{Name: PointRuntimeHours, Address: 3, RegisterClass: RegisterHolding, WireType: WireUint32, Scale: 0.1},
			{Name: PointStartCommand, Address: 100, RegisterClass: RegisterCoil, WireType: WireBool, AccessMode: constant.AccessModeReadWrite},
			{Name: PointStopCommand, Address: 101, RegisterClass: RegisterCoil, WireType: WireBool, AccessMode: constant.AccessModeReadWrite},
		},
	}
	m.Index()
	return m
}

func TestRegisterMapValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, testMap().Validate())
	})

	t.Run("empty", func(t *testing.T) {
		m := &RegisterMap{Brand: BrandCustom}
		assert.ErrorIs(t, m.Validate(), constant.ErrRegisterMapEmptied)
	})

	t.Run("duplicated name", func(t *testing.T) {
		m := testMap()
		m.Points = append(m.Points, &RegisterPoint{Name: PointVoltage, Address: 50, RegisterClass: RegisterHolding, WireType: WireUint16})
		err := m.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), PointVoltage)
	})

	t.Run("coil requires bool", func(t *testing.T) {
		m := testMap()
		m.Points = append(m.Points, &RegisterPoint{Name: "badCoil", Address: 60, RegisterClass: RegisterCoil, WireType: WireUint16})
		err := m.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bool")
	})

	t.Run("unnamed point", func(t *testing.T) {
		m := testMap()
		m.Points = append(m.Points, &RegisterPoint{Address: 61, RegisterClass: RegisterHolding, WireType: WireUint16})
		assert.Error(t, m.Validate())
	})
}

func TestRegisterMapPollPoints(t *testing.T) {
	points := testMap().PollPoints()

	require.Len(t, points, 3)
	for _, point := range points {
		assert.Equal(t, constant.AccessModeReadOnly, point.AccessMode)
	}
}

func TestRegisterMapCommandPoint(t *testing.T) {
	m := testMap()

	point, err := m.CommandPoint(PointStartCommand)
	require.NoError(t, err)
	assert.Equal(t, uint16(100), point.Address)

	_, err = m.CommandPoint(PointVoltage)
	assert.Error(t, err)

	_, err = m.CommandPoint("chokeCommand")
	assert.Error(t, err)
}

func TestRegisterMapIndexAppliesScaleDefault(t *testing.T) {
	m := testMap()

	point, ok := m.PointByName(PointEngineStatus)
	require.True(t, ok)
	assert.Equal(t, 1.0, point.Scale)

	scaled, ok := m.PointByName(PointVoltage)
	require.True(t, ok)
	assert.Equal(t, 0.1, scaled.Scale)
}

func TestRegisterMapClone(t *testing.T) {
	m := testMap()
	c := m.Clone()
	c.Brand = BrandCustom
	c.Points[0].Scale = 42

	assert.Equal(t, BrandGenerac, m.Brand)
	point, _ := m.PointByName(PointEngineStatus)
	assert.Equal(t, 1.0, point.Scale)
}
