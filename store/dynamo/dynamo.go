package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gofrs/uuid/v5"

	"github.com/zlnvch/notekeep/models"
)

type DynamoNotesStore struct {
	client    dynamoAPI
	tableName string
}

func NewDynamoNotesStore(ctx context.Context, devMode bool, dynamodbEndpoint string, tableName string) (*DynamoNotesStore, error) {
	client, err := newDynamoDBClient(ctx, devMode, dynamodbEndpoint)
	if err != nil {
		return nil, err
	}

	return newStoreWithClient(ctx, client, tableName)
}

func newStoreWithClient(ctx context.Context, client dynamoAPI, tableName string) (*DynamoNotesStore, error) {
	tables, err := getTables(client, ctx)
	if err != nil {
		return nil, err
	}

	foundTable := false
	for _, table := range tables {
		if table == tableName {
			foundTable = true
			break
		}
	}
	if !foundTable {
		return nil, fmt.Errorf("given table name '%s' not found in dynamodb", tableName)
	}

	return &DynamoNotesStore{client: client, tableName: tableName}, nil
}

func (dynamoStore *DynamoNotesStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	userId, err := uuid.NewV4()
	if err != nil {
		return models.User{}, err
	}
	user.Id = userId.String()

	// The email is the partition key, so the conditional put is what
	// enforces one user per email.
	if err := putNewItem(dynamoStore, ctx, userToDynamo(user)); err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (dynamoStore *DynamoNotesStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	pk, sk := userKey(email)
	du, err := getItem[dynamoUser](dynamoStore, ctx, pk, sk, false)
	if err != nil {
		return models.User{}, err
	}

	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoNotesStore) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	noteId, err := uuid.NewV7()
	if err != nil {
		return models.Note{}, err
	}
	note.Id = noteId.String()

	dn := noteToDynamo(note)
	if err := putNewItem(dynamoStore, ctx, dn); err != nil {
		return models.Note{}, err
	}

	return noteFromDynamo(dn), nil
}

func (dynamoStore *DynamoNotesStore) GetNote(ctx context.Context, ownerId string, noteId string) (models.Note, error) {
	pk, sk := noteKey(ownerId, noteId)
	dn, err := getItem[dynamoNote](dynamoStore, ctx, pk, sk, true)
	if err != nil {
		return models.Note{}, err
	}

	return noteFromDynamo(dn), nil
}

func (dynamoStore *DynamoNotesStore) QueryNotes(ctx context.Context, ownerId string, filter models.NoteFilter) ([]models.Note, error) {
	filterExpr, names, values := listFilter(filter)
	pk, _ := noteKey(ownerId, "")

	dynamoNotes, err := queryAllByPK[dynamoNote](dynamoStore, ctx, pk, noteSKPrefix, filterExpr, names, values)
	if err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0, len(dynamoNotes))
	for _, dn := range dynamoNotes {
		notes = append(notes, noteFromDynamo(dn))
	}

	return notes, nil
}

func (dynamoStore *DynamoNotesStore) UpdateNote(ctx context.Context, ownerId string, noteId string, patch models.NotePatch, updatedAt time.Time) (models.Note, error) {
	pk, sk := noteKey(ownerId, noteId)

	fields, err := patchFields(patch, updatedAt)
	if err != nil {
		return models.Note{}, err
	}

	dn, err := updateFields[dynamoNote](dynamoStore, ctx, pk, sk, fields)
	if err != nil {
		return models.Note{}, err
	}

	return noteFromDynamo(dn), nil
}

func (dynamoStore *DynamoNotesStore) DeleteNote(ctx context.Context, ownerId string, noteId string) error {
	pk, sk := noteKey(ownerId, noteId)
	return deleteExistingItem(dynamoStore, ctx, pk, sk)
}

// patchFields converts the present fields of a patch to attribute values.
func patchFields(patch models.NotePatch, updatedAt time.Time) (map[string]types.AttributeValue, error) {
	set := map[string]any{
		"UpdatedAt": updatedAt.UnixMilli(),
	}
	if patch.Title.Set {
		set["Title"] = patch.Title.Value
		set["TitleLower"] = strings.ToLower(patch.Title.Value)
	}
	if patch.Content.Set {
		set["Content"] = patch.Content.Value
		set["ContentLower"] = strings.ToLower(patch.Content.Value)
	}
	if patch.Labels.Set {
		labels := patch.Labels.Value
		if labels == nil {
			labels = []string{}
		}
		set["Labels"] = labels
	}
	if patch.Color.Set {
		set["Color"] = patch.Color.Value
	}
	if patch.Pinned.Set {
		set["Pinned"] = patch.Pinned.Value
	}
	if patch.Archived.Set {
		set["Archived"] = patch.Archived.Value
	}

	fields := make(map[string]types.AttributeValue, len(set))
	for name, v := range set {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", name, err)
		}
		fields[name] = av
	}

	return fields, nil
}
