package validators

import "go.mongodb.org/mongo-driver/bson"

var ItemValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"owner_id", "name", "description", "available"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"owner_id": objectIDHex,
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 255,
			},
			"description": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 1000,
			},
			"available": bson.M{
				"bsonType": "bool",
			},
			"request_id": objectIDHex,
		},
	},
}

var CommentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"item_id", "author_id", "text", "created_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"item_id":   objectIDHex,
			"author_id": objectIDHex,
			"text": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 2000,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
