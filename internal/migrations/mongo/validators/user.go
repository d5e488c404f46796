package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"username", "email", "wishlist", "created_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"username": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 30,
			},
			"email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},
			"wishlist": bson.M{
				"bsonType":    "array",
				"uniqueItems": true,
				"items": bson.M{
					"bsonType": "string",
				},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var CredentialsValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "username", "password_hash"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"username": bson.M{
				"bsonType": "string",
			},
			"password_hash": bson.M{
				"bsonType": "binData",
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
