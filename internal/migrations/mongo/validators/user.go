package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name", "email"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 255,
			},
			"email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 512,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var RequestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"description", "requester_id", "created_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"description": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 2000,
			},
			"requester_id": objectIDHex,
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
