package dynamo

import (
	"strings"
	"time"

	"github.com/zlnvch/notekeep/models"
)

const (
	userPKPrefix = "USER#"
	userSK       = "PROFILE"
	notePKPrefix = "NOTES#"
	noteSKPrefix = "NOTE#"
)

type dynamoUser struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	Id           string `dynamodbav:"Id"`
	Email        string `dynamodbav:"Email"`
	PasswordHash string `dynamodbav:"PasswordHash"`
	CreatedAt    int64  `dynamodbav:"CreatedAt"`
	UpdatedAt    int64  `dynamodbav:"UpdatedAt"`
}

func userKey(email string) (string, string) {
	return userPKPrefix + email, userSK
}

// Map domain User -> Dynamo
func userToDynamo(u models.User) dynamoUser {
	pk, sk := userKey(u.Email)
	return dynamoUser{
		PK:           pk,
		SK:           sk,
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UnixMilli(),
		UpdatedAt:    u.UpdatedAt.UnixMilli(),
	}
}

// Map Dynamo -> domain User
func userFromDynamo(du dynamoUser) models.User {
	return models.User{
		Id:           du.Id,
		Email:        du.Email,
		PasswordHash: du.PasswordHash,
		CreatedAt:    time.UnixMilli(du.CreatedAt).UTC(),
		UpdatedAt:    time.UnixMilli(du.UpdatedAt).UTC(),
	}
}

type dynamoNote struct {
	PK         string   `dynamodbav:"PK"`
	SK         string   `dynamodbav:"SK"`
	Id         string   `dynamodbav:"Id"`
	OwnerId    string   `dynamodbav:"OwnerId"`
	Title      string   `dynamodbav:"Title"`
	Content    string   `dynamodbav:"Content"`
	Labels     []string `dynamodbav:"Labels"`
	Color      string   `dynamodbav:"Color"`
	Pinned     bool     `dynamodbav:"Pinned"`
	Archived   bool     `dynamodbav:"Archived"`
	// lowercased copies the list filter runs contains() over, since
	// DynamoDB has no case-insensitive comparison
	TitleLower   string `dynamodbav:"TitleLower"`
	ContentLower string `dynamodbav:"ContentLower"`
	CreatedAt  int64    `dynamodbav:"CreatedAt"`
	UpdatedAt  int64    `dynamodbav:"UpdatedAt"`
}

func noteKey(ownerId string, noteId string) (string, string) {
	return notePKPrefix + ownerId, noteSKPrefix + noteId
}

// Map domain Note -> Dynamo
func noteToDynamo(n models.Note) dynamoNote {
	pk, sk := noteKey(n.OwnerId, n.Id)
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	return dynamoNote{
		PK:         pk,
		SK:         sk,
		Id:         n.Id,
		OwnerId:    n.OwnerId,
		Title:      n.Title,
		Content:    n.Content,
		Labels:     labels,
		Color:      n.Color,
		Pinned:     n.Pinned,
		Archived:   n.Archived,
		TitleLower:   strings.ToLower(n.Title),
		ContentLower: strings.ToLower(n.Content),
		CreatedAt:  n.CreatedAt.UnixMilli(),
		UpdatedAt:  n.UpdatedAt.UnixMilli(),
	}
}

// Map Dynamo -> domain Note
func noteFromDynamo(dn dynamoNote) models.Note {
	labels := dn.Labels
	if labels == nil {
		labels = []string{}
	}
	return models.Note{
		Id:        dn.Id,
		OwnerId:   dn.OwnerId,
		Title:     dn.Title,
		Content:   dn.Content,
		Labels:    labels,
		Color:     dn.Color,
		Pinned:    dn.Pinned,
		Archived:  dn.Archived,
		CreatedAt: time.UnixMilli(dn.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(dn.UpdatedAt).UTC(),
	}
}
