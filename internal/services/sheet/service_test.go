package sheet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/encumbrance"
	sheeterr "github.com/KirkDiggler/gurps-sheet-engine/internal/errors"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/events"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/repositories/sheets"
	mocksheets "github.com/KirkDiggler/gurps-sheet-engine/internal/repositories/sheets/mock"
	sheetsvc "github.com/KirkDiggler/gurps-sheet-engine/internal/services/sheet"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/sheetdoc"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/testutils"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/uuid"
	mockuuid "github.com/KirkDiggler/gurps-sheet-engine/internal/uuid/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ServiceTestSuite struct {
	suite.Suite
	ctx  context.Context
	repo *sheets.InMemoryRepository
	svc  sheetsvc.Service
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = sheets.NewInMemoryRepository()
	s.svc = sheetsvc.NewService(&sheetsvc.ServiceConfig{
		Repository:    s.repo,
		UUIDGenerator: uuid.NewSequenceGenerator("id"),
	})

	_, err := s.svc.Create(s.ctx, testutils.CreateTestFighter("fighter", "player-1"))
	s.Require().NoError(err)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func findChange(changes []events.Change, id string) (events.Change, bool) {
	for _, c := range changes {
		if c.ID == id {
			return c, true
		}
	}
	return events.Change{}, false
}

func (s *ServiceTestSuite) TestCreate_Summary() {
	summary, err := s.svc.Get(s.ctx, "fighter")
	s.Require().NoError(err)

	s.Equal("Sir Corwin", summary.Name)
	s.Equal("1d", summary.Thrust)
	s.Equal("2d-1", summary.Swing)
	s.Equal("45 lb", summary.BasicLift)
	s.Equal("20 lb", summary.WeightCarried)
	s.Equal(568.0, summary.WealthCarried)
	s.Equal(encumbrance.None.String(), summary.Encumbrance)
	s.Require().Len(summary.EncumbranceTable, 5)
	s.Equal(9, summary.EncumbranceTable[0].Dodge)
	s.Equal(1, summary.Special.Dodge)
	s.Equal(0, summary.Special.Block)
	s.Equal(21, summary.Points.Advantages)
}

func (s *ServiceTestSuite) TestCreate_AssignsID() {
	doc := testutils.CreateTestDocument("", "player-1", "Mira")

	summary, err := s.svc.Create(s.ctx, doc)
	s.Require().NoError(err)
	s.Equal("id-1", summary.ID)

	stored, err := s.repo.Get(s.ctx, "id-1")
	s.Require().NoError(err)
	s.Equal("Mira", stored.Name)
}

func (s *ServiceTestSuite) TestCreate_Invalid() {
	_, err := s.svc.Create(s.ctx, nil)
	s.True(sheeterr.IsInvalidArgument(err))

	_, err = s.svc.Create(s.ctx, testutils.CreateTestDocument("x", "", "Mira"))
	s.True(sheeterr.IsInvalidArgument(err))

	_, err = s.svc.Create(s.ctx, testutils.CreateTestDocument("x", "player-1", ""))
	s.True(sheeterr.IsValidation(err))

	_, err = s.svc.Create(s.ctx, testutils.CreateTestFighter("fighter", "player-1"))
	s.True(sheeterr.IsAlreadyExists(err))
}

func (s *ServiceTestSuite) TestSetEquipped() {
	changes, err := s.svc.SetEquipped(s.ctx, "fighter", "eq-shield", true)
	s.Require().NoError(err)

	block, ok := findChange(changes, "bonus.block")
	s.Require().True(ok)
	s.Equal(0, block.Old)
	s.Equal(2, block.New)

	summary, err := s.svc.Get(s.ctx, "fighter")
	s.Require().NoError(err)
	s.Equal(2, summary.Special.Block, "edit is persisted")
}

func (s *ServiceTestSuite) TestSetEnabled() {
	changes, err := s.svc.SetEnabled(s.ctx, "fighter", "adv-combat-reflexes", false)
	s.Require().NoError(err)

	dodge, ok := findChange(changes, "bonus.dodge")
	s.Require().True(ok)
	s.Equal(1, dodge.Old)
	s.Equal(0, dodge.New)

	points, ok := findChange(changes, "points.advantages")
	s.Require().True(ok)
	s.Equal(21, points.Old)
	s.Equal(6, points.New)
}

func (s *ServiceTestSuite) TestSetQuantity() {
	changes, err := s.svc.SetQuantity(s.ctx, "fighter", "eq-rations", 10)
	s.Require().NoError(err)

	wealth, ok := findChange(changes, "wealth.carried")
	s.Require().True(ok)
	s.Equal(568.0, wealth.Old)
	s.Equal(580.0, wealth.New)

	summary, err := s.svc.Get(s.ctx, "fighter")
	s.Require().NoError(err)
	s.Equal("23 lb", summary.WeightCarried)
}

func (s *ServiceTestSuite) TestEdit_Errors() {
	_, err := s.svc.SetQuantity(s.ctx, "fighter", "eq-rations", -1)
	s.True(sheeterr.IsInvalidArgument(err))

	_, err = s.svc.SetEquipped(s.ctx, "fighter", "missing-row", true)
	s.True(sheeterr.IsNotFound(err))
	s.Equal("missing-row", sheeterr.GetMeta(err)[sheeterr.MetaRowID])

	_, err = s.svc.SetEquipped(s.ctx, "missing", "eq-shield", true)
	s.True(sheeterr.IsNotFound(err))

	_, err = s.svc.SetEquipped(s.ctx, "fighter", "", true)
	s.True(sheeterr.IsInvalidArgument(err))
}

func (s *ServiceTestSuite) TestAttribute() {
	st, err := s.svc.Attribute(s.ctx, "fighter", "st")
	s.Require().NoError(err)
	s.Equal(13.0, st.Value)
	s.Equal(30, st.Points)

	hp, err := s.svc.Attribute(s.ctx, "fighter", "hp")
	s.Require().NoError(err)
	s.Require().NotNil(hp.Current)
	s.Equal(13, *hp.Current)
}

func (s *ServiceTestSuite) TestAttribute_IgnoresCase() {
	st, err := s.svc.Attribute(s.ctx, "fighter", "ST")
	s.Require().NoError(err)
	s.Equal("st", st.ID)
	s.Equal(13.0, st.Value)

	fp, err := s.svc.Attribute(s.ctx, "fighter", "Fp")
	s.Require().NoError(err)
	s.Equal("fp", fp.ID)
}

func (s *ServiceTestSuite) TestSkillsAndWeapons() {
	summary, err := s.svc.Get(s.ctx, "fighter")
	s.Require().NoError(err)

	s.Require().Len(summary.Skills, 1)
	s.Equal(sheetsvc.SkillSummary{
		ID:            "sk-broadsword",
		Name:          "Broadsword",
		Attribute:     "dx",
		Level:         14,
		RelativeLevel: 2,
		Points:        8,
	}, summary.Skills[0])
	s.Equal(8, summary.Points.Skills)

	s.Require().Len(summary.Weapons, 2)
	s.Equal("Swung", summary.Weapons[0].Usage)
	s.Equal("2d+1", summary.Weapons[0].Damage)
	s.Equal([]string{"Broadsword"}, summary.Weapons[0].Sources)
	s.Equal("Thrust", summary.Weapons[1].Usage)
	s.Equal("1d+2", summary.Weapons[1].Damage)

	changes, err := s.svc.SetEquipped(s.ctx, "fighter", "eq-broadsword", false)
	s.Require().NoError(err)
	swung, ok := findChange(changes, "weapon.eq-broadsword.0.damage")
	s.Require().True(ok)
	s.Equal("2d+1", swung.Old)
	s.Nil(swung.New)

	summary, err = s.svc.Get(s.ctx, "fighter")
	s.Require().NoError(err)
	s.Empty(summary.Weapons)
}

func (s *ServiceTestSuite) TestAttribute_Suggestion() {
	_, err := s.svc.Attribute(s.ctx, "fighter", "strenght")
	s.True(sheeterr.IsNotFound(err))
	s.Equal("st", sheeterr.GetMeta(err)[sheeterr.MetaSuggestion])

	_, err = s.svc.Attribute(s.ctx, "fighter", "zzzzzzzzzzzz")
	s.True(sheeterr.IsNotFound(err))
	s.NotContains(sheeterr.GetMeta(err), sheeterr.MetaSuggestion)
}

func (s *ServiceTestSuite) TestListAndDelete() {
	_, err := s.svc.Create(s.ctx, testutils.CreateTestDocument("second", "player-1", "Mira"))
	s.Require().NoError(err)

	summaries, err := s.svc.List(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Len(summaries, 2)

	s.Require().NoError(s.svc.Delete(s.ctx, "second"))
	_, err = s.svc.Get(s.ctx, "second")
	s.True(sheeterr.IsNotFound(err))
}

func TestService_NoOpEditSkipsUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocksheets.NewMockRepository(ctrl)
	svc := sheetsvc.NewService(&sheetsvc.ServiceConfig{Repository: repo})

	repo.EXPECT().Get(gomock.Any(), "fighter").Return(testutils.CreateTestFighter("fighter", "player-1"), nil)

	changes, err := svc.SetEquipped(context.Background(), "fighter", "eq-broadsword", true)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestService_UpdateFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocksheets.NewMockRepository(ctrl)
	svc := sheetsvc.NewService(&sheetsvc.ServiceConfig{Repository: repo})

	repo.EXPECT().Get(gomock.Any(), "fighter").Return(testutils.CreateTestFighter("fighter", "player-1"), nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, doc *sheetdoc.Document) error {
		assert.True(t, doc.CarriedEquipment[2].Equipped, "stored shield should be equipped")
		return sheeterr.Unavailablef("redis down")
	})

	_, err := svc.SetEquipped(context.Background(), "fighter", "eq-shield", true)
	assert.True(t, sheeterr.IsUnavailable(err))
	assert.NotNil(t, errors.Unwrap(err))
}

func TestService_CreateUsesGenerator(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocksheets.NewMockRepository(ctrl)
	gen := mockuuid.NewMockGenerator(ctrl)
	svc := sheetsvc.NewService(&sheetsvc.ServiceConfig{Repository: repo, UUIDGenerator: gen})

	gen.EXPECT().New().Return("sheet-new")
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, doc *sheetdoc.Document) error {
		assert.Equal(t, "sheet-new", doc.ID)
		assert.Equal(t, "player-1", doc.OwnerID)
		require.NotNil(t, doc.Settings, "stored documents carry their rule settings")
		assert.Equal(t, "basic_set", doc.Settings.DamageProgression)
		return nil
	})

	summary, err := svc.Create(context.Background(), testutils.CreateTestDocument("", "player-1", "Mira"))
	require.NoError(t, err)
	assert.Equal(t, "sheet-new", summary.ID)
	assert.Equal(t, "1d-2", summary.Thrust)
}

func TestNewService_Panics(t *testing.T) {
	assert.Panics(t, func() { sheetsvc.NewService(nil) })
	assert.Panics(t, func() { sheetsvc.NewService(&sheetsvc.ServiceConfig{}) })
}
